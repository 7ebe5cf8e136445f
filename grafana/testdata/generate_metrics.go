// Command generate_metrics serves synthetic pdfsqueeze metrics so the
// Grafana dashboards can be developed against realistic series without
// running a daemon. Point a Prometheus scrape job at the listen address.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Instrument names and buckets mirror what pdfsqueezed exposes: the
// native collectors under the api subsystem, plus the OpenTelemetry
// instruments as a collector's Prometheus exporter renders them (dots
// become underscores).
var (
	// Native collectors (GET /metrics on the daemon)
	compressionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfsqueeze_api_compressions_total",
			Help: "Compression operations served over the HTTP API",
		},
		[]string{"algorithm", "result"},
	)
	compressionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pdfsqueeze_api_compression_seconds",
			Help:    "Compression processing time in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"algorithm"},
	)
	tokensSavedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pdfsqueeze_api_tokens_saved_total",
			Help: "Estimated tokens removed by compression",
		},
	)

	// Compression service instruments
	compressionOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfsqueeze_compression_operations_total",
			Help: "Compression operations by algorithm.",
		},
		[]string{"algorithm", "compressed"},
	)
	compressionServiceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pdfsqueeze_compression_duration_seconds",
			Help:    "Wall time per compression.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"algorithm"},
	)
	compressionRetention = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pdfsqueeze_compression_retention_percent",
			Help:    "Output tokens as a percentage of input tokens.",
			Buckets: []float64{5, 10, 25, 50, 75, 90, 100},
		},
	)
	compressionQuality = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pdfsqueeze_compression_quality_score",
			Help:    "Quality score distribution, 0 to 1.",
			Buckets: []float64{0.0, 0.2, 0.4, 0.6, 0.8, 1.0},
		},
	)
	compressionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfsqueeze_compression_errors_total",
			Help: "Failed compressions by algorithm and error type.",
		},
		[]string{"algorithm", "error_type"},
	)

	// HTTP server instruments
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfsqueeze_http_requests_total",
			Help: "HTTP requests by route and status.",
		},
		[]string{"method", "endpoint", "status"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pdfsqueeze_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"method", "endpoint"},
	)
	httpResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pdfsqueeze_http_response_size_bytes",
			Help:    "HTTP response body sizes.",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000},
		},
		[]string{"method", "endpoint"},
	)
	httpActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pdfsqueeze_http_active_requests",
			Help: "In-flight HTTP requests.",
		},
	)
)

var (
	algorithms = []string{"extractive", "heuristic"}
	endpoints  = []string{"/api/v1/compress", "/api/v1/stats", "/api/v1/events/:id", "/health"}
	errorTypes = []string{"unknown_algorithm", "extraction_failed", "canceled"}
)

func main() {
	addr := flag.String("addr", ":9090", "listen address for the /metrics endpoint")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seed()
	go emit(ctx)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: *addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("synthetic metrics on http://localhost%s/metrics (scrape job: pdfsqueeze-test)", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

// seed backfills enough history for rate() panels to render immediately.
func seed() {
	for i := 0; i < 120; i++ {
		algo := pick(algorithms)
		result := "success"
		if rand.Float64() > 0.95 {
			result = "error"
		}
		compressionsTotal.WithLabelValues(algo, result).Inc()
		compressionDuration.WithLabelValues(algo).Observe(rand.Float64() * 0.8)
		compressionOperations.WithLabelValues(algo, coin()).Inc()
		compressionServiceDuration.WithLabelValues(algo).Observe(rand.Float64() * 0.8)
		tokensSavedTotal.Add(float64(rand.Intn(40000) + 2000))
	}

	// Retention clusters around the configured ratio, quality above it
	for i := 0; i < 80; i++ {
		compressionRetention.Observe(30 + rand.Float64()*60)
		compressionQuality.Observe(0.4 + rand.Float64()*0.6)
	}
	for i := 0; i < 6; i++ {
		compressionErrors.WithLabelValues(pick(algorithms), pick(errorTypes)).Inc()
	}

	for i := 0; i < 250; i++ {
		endpoint := pick(endpoints)
		method := pick([]string{"GET", "POST"})
		httpRequestsTotal.WithLabelValues(method, endpoint, pick([]string{"200", "400", "429", "500"})).Inc()
		httpRequestDuration.WithLabelValues(method, endpoint).Observe(rand.Float64() * 0.4)
		httpResponseSize.WithLabelValues(method, endpoint).Observe(float64(rand.Intn(80000) + 200))
	}
	httpActiveRequests.Set(float64(rand.Intn(8)))
}

// emit keeps the series moving at a believable request rate until ctx
// is canceled.
func emit(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if rand.Float64() > 0.3 {
				algo := pick(algorithms)
				compressionsTotal.WithLabelValues(algo, "success").Inc()
				compressionDuration.WithLabelValues(algo).Observe(rand.Float64() * 0.8)
				compressionOperations.WithLabelValues(algo, coin()).Inc()
				compressionServiceDuration.WithLabelValues(algo).Observe(rand.Float64() * 0.8)
				compressionRetention.Observe(30 + rand.Float64()*60)
				compressionQuality.Observe(0.4 + rand.Float64()*0.6)
				tokensSavedTotal.Add(float64(rand.Intn(40000) + 2000))
			}
			if rand.Float64() > 0.9 {
				compressionErrors.WithLabelValues(pick(algorithms), "extraction_failed").Inc()
			}
			if rand.Float64() > 0.2 {
				endpoint := pick(endpoints)
				method := "POST"
				if endpoint != "/api/v1/compress" {
					method = "GET"
				}
				status := "200"
				if rand.Float64() > 0.92 {
					status = pick([]string{"400", "429", "500"})
				}
				httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
				httpRequestDuration.WithLabelValues(method, endpoint).Observe(rand.Float64() * 0.4)
				httpResponseSize.WithLabelValues(method, endpoint).Observe(float64(rand.Intn(80000) + 200))
			}

			httpActiveRequests.Set(float64(rand.Intn(8)))
		}
	}
}

func pick(choices []string) string {
	return choices[rand.Intn(len(choices))]
}

func coin() string {
	if rand.Float64() > 0.5 {
		return "true"
	}
	return "false"
}
