package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mindhub/medsafety-api/safety"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count, latency and in-flight gauge per route.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		HTTPRequestInFlight.Inc()
		defer HTTPRequestInFlight.Dec()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: 200}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()

		path := chi.RouteContext(r.Context()).RoutePattern()

		HTTPRequestTotals.WithLabelValues(
			r.Method,
			path,
			fmt.Sprintf("%d", wrapped.statusCode),
		).Inc()

		HTTPRequestDuration.WithLabelValues(
			r.Method,
			path,
		).Observe(duration)
	})
}

// RecordEvaluation updates the domain metrics for one completed report.
func RecordEvaluation(report *safety.Report) {
	if report == nil {
		return
	}

	EvaluationsTotal.Inc()
	SafetyScore.Observe(float64(report.SafetyScore))

	for _, finding := range report.Interactions {
		FindingsTotal.WithLabelValues(string(finding.Type), string(finding.Severity)).Inc()
	}
	for _, warning := range report.Warnings {
		WarningsTotal.WithLabelValues(string(warning.Type)).Inc()
	}
}
