package middleware

import (
	"errors"
	"net/http"

	"github.com/infini-money/infini-go/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	latencyBuckets = []float64{.25, .5, 1, 2.5, 5, 10}

	inFlightGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "in_flight_requests",
		Help: "A gauge of requests currently being served by the wrapped handler.",
	})
)

func init() {
	prometheus.MustRegister(inFlightGauge)
}

func must(v interface{}, err error) interface{} {
	if err != nil {
		panic(err.Error())
	}
	return v
}

func registerIgnoreExisting(c prometheus.Collector) (interface{}, error) {
	if err := prometheus.Register(c); err != nil {
		var are *prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			// already registered.
			switch (c).(type) {
			case *prometheus.CounterVec:
				return are.ExistingCollector.(*prometheus.CounterVec), nil
			case *prometheus.HistogramVec:
				return are.ExistingCollector.(*prometheus.HistogramVec), nil
			case prometheus.Gauge:
				return are.ExistingCollector.(prometheus.Gauge), nil
			default:
				return nil, errors.New("unknown type")
			}
		}
	}
	return c, nil
}

// InstrumentRoundTripper instruments an http.RoundTripper to capture metrics like the number
// of active requests, the total number of requests made and latency information
func InstrumentRoundTripper(roundTripper http.RoundTripper, service string) http.RoundTripper {
	clientInFlightGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "client_in_flight_requests",
		Help:        "A gauge of in-flight requests for the wrapped client.",
		ConstLabels: prometheus.Labels{"service": service},
	})
	// attempt to register, if already registered use the registered one
	clientInFlightGauge = must(registerIgnoreExisting(clientInFlightGauge)).(prometheus.Gauge)

	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "client_api_requests_total",
			Help:        "A counter for requests from the wrapped client.",
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{"code", "method"},
	)
	counter = must(registerIgnoreExisting(counter)).(*prometheus.CounterVec)

	// histVec has no labels, making it a zero-dimensional ObserverVec.
	histVec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "client_request_duration_seconds",
			Help:        "A histogram of request latencies.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: prometheus.Labels{"service": service},
		},
		[]string{},
	)
	histVec = must(registerIgnoreExisting(histVec)).(*prometheus.HistogramVec)

	// Wrap the specified RoundTripper with middleware.
	return promhttp.InstrumentRoundTripperInFlight(clientInFlightGauge,
		promhttp.InstrumentRoundTripperCounter(counter,
			promhttp.InstrumentRoundTripperDuration(histVec, roundTripper),
		),
	)
}

// InstrumentHandlerFunc - helper to wrap up a handler func
func InstrumentHandlerFunc(name string, f handlers.AppHandler) http.HandlerFunc {
	return InstrumentHandler(name, f).ServeHTTP
}

// InstrumentHandler instruments an http.Handler to capture metrics like the number
// the total number of requests served and latency information
func InstrumentHandler(name string, h http.Handler) http.Handler {
	hRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "api_requests_total",
			Help:        "Number of requests per handler.",
			ConstLabels: prometheus.Labels{"handler": name},
		},
		[]string{"code", "method"},
	)
	hRequests = must(registerIgnoreExisting(hRequests)).(*prometheus.CounterVec)

	hLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "request_duration_seconds",
			Help:        "A histogram of latencies for requests.",
			Buckets:     latencyBuckets,
			ConstLabels: prometheus.Labels{"handler": name},
		},
		[]string{"method"},
	)
	hLatency = must(registerIgnoreExisting(hLatency)).(*prometheus.HistogramVec)

	return promhttp.InstrumentHandlerInFlight(inFlightGauge,
		promhttp.InstrumentHandlerCounter(hRequests, promhttp.InstrumentHandlerDuration(hLatency, h)),
	)
}

// Metrics returns a http.HandlerFunc for the prometheus /metrics endpoint
func Metrics() http.HandlerFunc {
	return promhttp.Handler().(http.HandlerFunc)
}
