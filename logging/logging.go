package logging

import (
	"context"
	"io"
	"os"
	"time"

	appctx "github.com/infini-money/infini-go/context"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
)

var (
	// we are not promising to get every log message in the log
	// anymore, when it comes down to it, we would rather the process
	// runs than fails on log writing contention.  This will let us
	// see how many logs we are dropping
	droppedLogTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dropped_log_events_total",
			Help: "A counter for the number of dropped log messages",
		},
	)
	// Writer - the writer the process logger was set up with
	Writer io.WriteCloser
)

// NopCloser returns a WriteCloser with a no-op Close method wrapping w
func NopCloser(w io.Writer) io.WriteCloser {
	return nopCloser{w}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func init() {
	prometheus.MustRegister(droppedLogTotal)
}

// SetupLogger - helper to setup a logger and associate with context
func SetupLogger(ctx context.Context) (context.Context, *zerolog.Logger) {
	writer, ok := ctx.Value(appctx.LogWriterCTXKey).(io.Writer)

	env, err := appctx.GetStringFromContext(ctx, appctx.EnvironmentCTXKey)
	if err != nil {
		// if not in context, default to local
		env = "local"
	}

	// defaults to info level
	level, _ := appctx.GetLogLevelFromContext(ctx, appctx.LogLevelCTXKey)

	if ok {
		Writer = NopCloser(writer)
	} else if env != "local" {
		// this log writer uses a ring buffer and drops messages that cannot be processed
		// in a timely manner
		Writer = diode.NewWriter(os.Stdout, 1000, time.Duration(20*time.Millisecond), func(missed int) {
			// add to our counter of lost log messages
			droppedLogTotal.Add(float64(missed))
		})
	} else {
		Writer = NopCloser(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	// always print out timestamp
	l := zerolog.New(Writer).With().Timestamp().Logger()

	// set the log level
	l = l.Level(level)

	// debug override
	if debug, ok := ctx.Value(appctx.DebugLoggingCTXKey).(bool); ok && debug {
		l = l.Level(zerolog.DebugLevel)
	}

	return l.WithContext(ctx), &l
}

// UpdateContext - replace the logger carried on the context
func UpdateContext(ctx context.Context, logger zerolog.Logger) (context.Context, *zerolog.Logger) {
	ctx = logger.WithContext(ctx)
	return ctx, &logger
}

// Logger - get a module scoped logger from the context, setting one up if absent
func Logger(ctx context.Context, prefix string) *zerolog.Logger {
	l, err := appctx.GetLogger(ctx)
	if err != nil {
		// create a new logger
		_, l = SetupLogger(ctx)
	}
	sl := l.With().Str("module", prefix).Logger()
	return &sl
}

// FromContext - retrieves logger from context or gets a new logger if not present
func FromContext(ctx context.Context) *zerolog.Logger {
	logger, err := appctx.GetLogger(ctx)
	if err != nil {
		_, logger = SetupLogger(ctx)
	}
	return logger
}
