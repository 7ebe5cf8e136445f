package httpapi

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Native Prometheus collectors behind GET /metrics, for deployments that
// scrape the daemon directly instead of running an OTLP collector. The
// api subsystem keeps their names clear of the OpenTelemetry instruments.
var (
	// compressionsTotal counts compressions served over HTTP.
	// Labels: algorithm, result (success, error)
	compressionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdfsqueeze",
			Subsystem: "api",
			Name:      "compressions_total",
			Help:      "Compression operations served over the HTTP API",
		},
		[]string{"algorithm", "result"},
	)

	// compressionSeconds tracks per-algorithm compression time as
	// reported by the compression service.
	compressionSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pdfsqueeze",
			Subsystem: "api",
			Name:      "compression_seconds",
			Help:      "Compression processing time in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"algorithm"},
	)

	// tokensSavedTotal accumulates the estimated token reduction across
	// all successful compressions.
	tokensSavedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pdfsqueeze",
			Subsystem: "api",
			Name:      "tokens_saved_total",
			Help:      "Estimated tokens removed by compression",
		},
	)
)

// recordCompressionError counts a failed compression request.
func recordCompressionError(algorithm string) {
	compressionsTotal.WithLabelValues(algorithm, "error").Inc()
}

// recordCompressionResult counts a successful compression and its
// estimated token savings.
func recordCompressionResult(algorithm string, elapsed time.Duration, originalTokens, finalTokens int) {
	compressionsTotal.WithLabelValues(algorithm, "success").Inc()
	compressionSeconds.WithLabelValues(algorithm).Observe(elapsed.Seconds())
	if saved := originalTokens - finalTokens; saved > 0 {
		tokensSavedTotal.Add(float64(saved))
	}
}
