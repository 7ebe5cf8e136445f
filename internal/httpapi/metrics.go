package httpapi

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/fyrsmithlabs/pdfsqueeze/internal/httpapi"

// requestMetrics carries the OpenTelemetry instruments for the REST API.
// Instruments that fail to register stay nil and are skipped at record
// time, so a broken meter never blocks request handling.
type requestMetrics struct {
	requests metric.Int64Counter
	latency  metric.Float64Histogram
	bodySize metric.Int64Histogram
	inFlight metric.Int64UpDownCounter
}

func newRequestMetrics(logger *zap.Logger) *requestMetrics {
	if logger == nil {
		logger = zap.NewNop()
	}

	meter := otel.Meter(instrumentationName)
	m := &requestMetrics{}
	var errs []error

	var err error
	m.requests, err = meter.Int64Counter(
		"pdfsqueeze.http.requests_total",
		metric.WithDescription("Completed HTTP requests by method, route, and status."),
		metric.WithUnit("{request}"),
	)
	errs = append(errs, err)

	m.latency, err = meter.Float64Histogram(
		"pdfsqueeze.http.request_duration_seconds",
		metric.WithDescription("Wall time per request. Compression requests dominate the upper buckets."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	errs = append(errs, err)

	m.bodySize, err = meter.Int64Histogram(
		"pdfsqueeze.http.response_size_bytes",
		metric.WithDescription("Response body size. Tracks how large compressed outputs run in practice."),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(100, 500, 1000, 5000, 10000, 50000, 100000, 500000),
	)
	errs = append(errs, err)

	m.inFlight, err = meter.Int64UpDownCounter(
		"pdfsqueeze.http.active_requests",
		metric.WithDescription("Requests currently being served."),
		metric.WithUnit("{request}"),
	)
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		logger.Warn("Some HTTP instruments failed to register", zap.Error(err))
	}
	return m
}

// middleware records one measurement set per completed request. Labels use
// the echo route template (/api/v1/events/:id), not the concrete URL, to
// keep cardinality bounded.
func (m *requestMetrics) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			start := time.Now()

			if m.inFlight != nil {
				m.inFlight.Add(ctx, 1)
			}

			err := next(c)

			attrs := metric.WithAttributes(
				attribute.String("method", c.Request().Method),
				attribute.String("endpoint", c.Path()),
				attribute.Int("status", c.Response().Status),
			)
			if m.requests != nil {
				m.requests.Add(ctx, 1, attrs)
			}
			if m.latency != nil {
				m.latency.Record(ctx, time.Since(start).Seconds(), attrs)
			}
			if m.bodySize != nil {
				m.bodySize.Record(ctx, c.Response().Size, attrs)
			}
			if m.inFlight != nil {
				m.inFlight.Add(ctx, -1)
			}

			return err
		}
	}
}
