package telemetry

import (
	"context"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// Recorder is a Telemetry backed by in-memory exporters, for tests. Spans
// land in Spans as they end; metrics are pulled on demand with Collect.
type Recorder struct {
	*Telemetry
	Spans *tracetest.SpanRecorder

	reader *sdkmetric.ManualReader
}

// NewRecorder builds a recording Telemetry. It does not touch the global
// OTel providers, so parallel tests stay isolated.
func NewRecorder() *Recorder {
	spans := tracetest.NewSpanRecorder()
	reader := sdkmetric.NewManualReader()

	cfg := DefaultConfig()
	cfg.Enabled = true

	return &Recorder{
		Telemetry: &Telemetry{
			cfg:     cfg,
			traces:  sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans)),
			metrics: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
		},
		Spans:  spans,
		reader: reader,
	}
}

// Collect pulls the current state of every instrument.
func (r *Recorder) Collect(ctx context.Context) (metricdata.ResourceMetrics, error) {
	var rm metricdata.ResourceMetrics
	err := r.reader.Collect(ctx, &rm)
	return rm, err
}

// EndedSpan returns the first ended span with the given name, or nil.
func (r *Recorder) EndedSpan(name string) sdktrace.ReadOnlySpan {
	for _, span := range r.Spans.Ended() {
		if span.Name() == name {
			return span
		}
	}
	return nil
}

// SpanNames lists the names of all ended spans in end order.
func (r *Recorder) SpanNames() []string {
	ended := r.Spans.Ended()
	names := make([]string, len(ended))
	for i, span := range ended {
		names[i] = span.Name()
	}
	return names
}
