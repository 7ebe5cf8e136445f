package compress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/fyrsmithlabs/pdfsqueeze/internal/compress"

// serviceMetrics holds the instruments recorded on every Compress call.
type serviceMetrics struct {
	operations metric.Int64Counter
	latency    metric.Float64Histogram
	retention  metric.Float64Histogram
	quality    metric.Float64Histogram
	failures   metric.Int64Counter
}

func newServiceMetrics(meter metric.Meter) (serviceMetrics, error) {
	var m serviceMetrics
	var errs []error

	var err error
	m.operations, err = meter.Int64Counter(
		"pdfsqueeze.compression.operations_total",
		metric.WithDescription("Compression operations by algorithm."),
		metric.WithUnit("{operation}"),
	)
	errs = append(errs, err)

	m.latency, err = meter.Float64Histogram(
		"pdfsqueeze.compression.duration_seconds",
		metric.WithDescription("Wall time per compression."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0),
	)
	errs = append(errs, err)

	m.retention, err = meter.Float64Histogram(
		"pdfsqueeze.compression.retention_percent",
		metric.WithDescription("Output tokens as a percentage of input tokens."),
		metric.WithUnit("%"),
		metric.WithExplicitBucketBoundaries(5, 10, 25, 50, 75, 90, 100),
	)
	errs = append(errs, err)

	m.quality, err = meter.Float64Histogram(
		"pdfsqueeze.compression.quality_score",
		metric.WithDescription("Quality score distribution, 0 to 1."),
		metric.WithUnit("1"),
		metric.WithExplicitBucketBoundaries(0.0, 0.2, 0.4, 0.6, 0.8, 1.0),
	)
	errs = append(errs, err)

	m.failures, err = meter.Int64Counter(
		"pdfsqueeze.compression.errors_total",
		metric.WithDescription("Failed compressions by algorithm and error type."),
		metric.WithUnit("{error}"),
	)
	errs = append(errs, err)

	return m, errors.Join(errs...)
}

func (m serviceMetrics) recordFailure(ctx context.Context, algorithm Algorithm, errorType string) {
	m.failures.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("algorithm", string(algorithm)),
			attribute.String("error_type", errorType),
		),
	)
}

// Service routes compression requests to the configured algorithms and
// records telemetry for every operation.
type Service struct {
	extractive *ExtractiveCompressor
	heuristic  *HeuristicCompressor
	config     Config
	gate       QualityGate

	tracer  trace.Tracer
	metrics serviceMetrics
}

// NewService builds a Service, filling zero config fields with defaults.
func NewService(config Config) (*Service, error) {
	if config.DefaultAlgorithm == "" {
		config.DefaultAlgorithm = AlgorithmExtractive
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultMaxTokens
	}
	if config.Ratio == 0 {
		config.Ratio = DefaultRatio
	}

	metrics, err := newServiceMetrics(otel.Meter(instrumentationName))
	if err != nil {
		return nil, fmt.Errorf("register compression instruments: %w", err)
	}

	return &Service{
		extractive: NewExtractiveCompressor(config),
		heuristic:  NewHeuristicCompressor(config),
		config:     config,
		gate:       QualityGate{MinComposite: config.QualityThreshold},
		tracer:     otel.Tracer(instrumentationName),
		metrics:    metrics,
	}, nil
}

// Options returns the service defaults as per-call options.
func (s *Service) Options() Options {
	return Options{
		MaxTokens: s.config.MaxTokens,
		Ratio:     s.config.Ratio,
	}
}

// DefaultAlgorithm returns the algorithm used when a request names none.
func (s *Service) DefaultAlgorithm() Algorithm {
	return s.config.DefaultAlgorithm
}

// Compress compresses text with the named algorithm. An empty algorithm
// falls back to the service default; AlgorithmAuto routes on content shape.
// Empty text is not an error: it flows through as an empty result.
func (s *Service) Compress(ctx context.Context, text string, algorithm Algorithm, opts Options) (*Result, error) {
	if algorithm == "" {
		algorithm = s.config.DefaultAlgorithm
	}

	ctx, span := s.tracer.Start(ctx, "compress.Compress",
		trace.WithAttributes(
			attribute.String("algorithm", string(algorithm)),
			attribute.Int("max_tokens", opts.MaxTokens),
			attribute.Float64("ratio", opts.Ratio),
			attribute.Int("input_bytes", len(text)),
		),
	)
	defer span.End()

	start := time.Now()

	compressor, err := s.route(algorithm, text)
	if err != nil {
		span.RecordError(err)
		s.metrics.recordFailure(ctx, algorithm, "unknown_algorithm")
		return nil, err
	}

	caps := compressor.GetCapabilities(ctx)
	if len(text) > caps.MaxContentLength {
		err := fmt.Errorf("%w: %d bytes, maximum %d for algorithm %s",
			ErrContentTooLarge, len(text), caps.MaxContentLength, compressor.Algorithm())
		span.RecordError(err)
		s.metrics.recordFailure(ctx, algorithm, "content_too_large")
		return nil, err
	}

	result, err := compressor.Compress(ctx, text, opts)
	if err != nil {
		span.RecordError(err)
		s.metrics.recordFailure(ctx, algorithm, "compression_failed")
		return nil, fmt.Errorf("compression failed: %w", err)
	}

	if !s.gate.Admit(result.QualityScore) {
		span.SetAttributes(attribute.Bool("quality_below_threshold", true))
		if result.Metadata == nil {
			result.Metadata = make(map[string]string, 1)
		}
		result.Metadata["quality_below_threshold"] = "true"
	}

	seconds := time.Since(start).Seconds()
	algAttr := attribute.String("algorithm", string(result.Algorithm))

	s.metrics.operations.Add(ctx, 1,
		metric.WithAttributes(
			algAttr,
			attribute.Bool("compressed", result.Compressed),
		),
	)
	s.metrics.latency.Record(ctx, seconds, metric.WithAttributes(algAttr))
	s.metrics.retention.Record(ctx, result.RetentionPercent(), metric.WithAttributes(algAttr))
	s.metrics.quality.Record(ctx, result.QualityScore, metric.WithAttributes(algAttr))

	span.SetAttributes(
		attribute.Float64("processing_time_s", seconds),
		attribute.Int("original_tokens", result.OriginalTokens),
		attribute.Int("final_tokens", result.FinalTokens),
		attribute.Float64("retention_percent", result.RetentionPercent()),
		attribute.Float64("quality_score", result.QualityScore),
		attribute.Bool("compressed", result.Compressed),
	)

	return result, nil
}

// GetCapabilities reports the limits of every registered algorithm.
func (s *Service) GetCapabilities(ctx context.Context) map[Algorithm]Capabilities {
	return map[Algorithm]Capabilities{
		AlgorithmExtractive: s.extractive.GetCapabilities(ctx),
		AlgorithmHeuristic:  s.heuristic.GetCapabilities(ctx),
	}
}

// route resolves an algorithm name to a compressor. Auto inspects the text.
func (s *Service) route(algorithm Algorithm, text string) (Compressor, error) {
	switch algorithm {
	case AlgorithmExtractive:
		return s.extractive, nil
	case AlgorithmHeuristic:
		return s.heuristic, nil
	case AlgorithmAuto:
		if detectShape(text) == ShapeTabular {
			return s.heuristic, nil
		}
		return s.extractive, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
}
