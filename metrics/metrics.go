// Package metrics provides Prometheus metrics for the safety API: the HTTP
// request counters shared by all endpoints plus domain metrics for safety
// evaluations (findings by type and severity, score distribution, directory
// lookup failures). All metrics register with the default registry at
// package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	EvaluationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "safety_evaluations_total",
			Help: "Total completed safety evaluations",
		},
	)

	FindingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safety_findings_total",
			Help: "Interaction findings produced, by type and severity",
		},
		[]string{"type", "severity"},
	)

	WarningsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "safety_warnings_total",
			Help: "Advisory warnings produced, by type",
		},
		[]string{"type"},
	)

	SafetyScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "safety_score",
			Help:    "Distribution of aggregate safety scores",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	DirectoryLookupFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "medication_directory_lookup_failures_total",
			Help: "Failed medication reference lookups (degraded evaluations)",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(EvaluationsTotal)
	prometheus.MustRegister(FindingsTotal)
	prometheus.MustRegister(WarningsTotal)
	prometheus.MustRegister(SafetyScore)
	prometheus.MustRegister(DirectoryLookupFailures)
}
