package context

import (
	"context"

	"github.com/rs/zerolog"
)

// GetStringFromContext - given a CTXKey return the string value from the context if it exists
func GetStringFromContext(ctx context.Context, key CTXKey) (string, error) {
	v := ctx.Value(key)
	if v == nil {
		return "", ErrNotInContext
	}
	s, ok := v.(string)
	if !ok {
		return "", ErrValueWrongType
	}
	return s, nil
}

// GetLogLevelFromContext - return the log level set on the context, defaulting to info
func GetLogLevelFromContext(ctx context.Context, key CTXKey) (zerolog.Level, error) {
	v := ctx.Value(key)
	if v == nil {
		return zerolog.InfoLevel, ErrNotInContext
	}
	l, ok := v.(zerolog.Level)
	if !ok {
		return zerolog.InfoLevel, ErrValueWrongType
	}
	return l, nil
}

// GetLogger - return the logger carried on the context
func GetLogger(ctx context.Context) (*zerolog.Logger, error) {
	logger := zerolog.Ctx(ctx)
	if logger.GetLevel() == zerolog.Disabled {
		// this is the disabled logger zerolog hands back when nothing is set
		return nil, ErrNotInContext
	}
	return logger, nil
}
