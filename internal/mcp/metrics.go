package mcp

import (
	"context"
	"errors"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pdfsqueeze/internal/compress"
	"github.com/fyrsmithlabs/pdfsqueeze/internal/extract"
)

const instrumentationName = "github.com/fyrsmithlabs/pdfsqueeze/internal/mcp"

// Metrics instruments tool calls. Instruments that fail to register stay
// nil and are skipped at record time.
type Metrics struct {
	invocations metric.Int64Counter
	duration    metric.Float64Histogram
	failures    metric.Int64Counter
	inFlight    metric.Int64UpDownCounter
}

// NewMetrics registers the MCP tool instruments on the global meter.
func NewMetrics(logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}

	meter := otel.Meter(instrumentationName)
	m := &Metrics{}
	var errs []error

	var err error
	m.invocations, err = meter.Int64Counter(
		"pdfsqueeze.mcp.tool.invocations_total",
		metric.WithDescription("Tool calls by tool name."),
		metric.WithUnit("{invocation}"),
	)
	errs = append(errs, err)

	m.duration, err = meter.Float64Histogram(
		"pdfsqueeze.mcp.tool.duration_seconds",
		metric.WithDescription("Tool call wall time. compress_file includes PDF extraction."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	errs = append(errs, err)

	m.failures, err = meter.Int64Counter(
		"pdfsqueeze.mcp.tool.errors_total",
		metric.WithDescription("Failed tool calls by tool name and reason."),
		metric.WithUnit("{error}"),
	)
	errs = append(errs, err)

	m.inFlight, err = meter.Int64UpDownCounter(
		"pdfsqueeze.mcp.tool.active_requests",
		metric.WithDescription("Tool calls currently executing."),
		metric.WithUnit("{request}"),
	)
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		logger.Warn("Some MCP instruments failed to register", zap.Error(err))
	}
	return m
}

// RecordInvocation counts one finished tool call, with its duration and,
// when err is non-nil, a failure reason label.
func (m *Metrics) RecordInvocation(ctx context.Context, tool string, elapsed time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("tool", tool))

	if m.invocations != nil {
		m.invocations.Add(ctx, 1, attrs)
	}
	if m.duration != nil {
		m.duration.Record(ctx, elapsed.Seconds(), attrs)
	}
	if err != nil && m.failures != nil {
		m.failures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("tool", tool),
			attribute.String("reason", failureReason(err)),
		))
	}
}

// IncrementActive marks a tool call as started.
func (m *Metrics) IncrementActive(ctx context.Context, tool string) {
	if m.inFlight != nil {
		m.inFlight.Add(ctx, 1, metric.WithAttributes(attribute.String("tool", tool)))
	}
}

// DecrementActive marks a tool call as finished.
func (m *Metrics) DecrementActive(ctx context.Context, tool string) {
	if m.inFlight != nil {
		m.inFlight.Add(ctx, -1, metric.WithAttributes(attribute.String("tool", tool)))
	}
}

// failureReason buckets an error into a low-cardinality label. Sentinel
// errors from the compression and extraction packages map directly; the
// rest fall back on coarse categories.
func failureReason(err error) string {
	switch {
	case errors.Is(err, compress.ErrInvalidRatio),
		errors.Is(err, compress.ErrInvalidMaxTokens),
		errors.Is(err, compress.ErrUnknownAlgorithm):
		return "validation_error"
	case errors.Is(err, compress.ErrContentTooLarge),
		errors.Is(err, extract.ErrTooManyPages),
		errors.Is(err, extract.ErrFileTooLarge):
		return "limit_exceeded"
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, extract.ErrEmptyDocument):
		return "empty_document"
	case errors.Is(err, os.ErrNotExist):
		return "not_found"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "internal_error"
	}
}
