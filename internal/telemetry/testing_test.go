package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	oteltrace "go.opentelemetry.io/otel/trace"
)

func TestRecorder_Spans(t *testing.T) {
	rec := NewRecorder()
	ctx := context.Background()

	tracer := rec.Tracer("test")
	_, span := tracer.Start(ctx, "compress.document",
		oteltrace.WithAttributes(attribute.String("algorithm", "extractive")))
	span.End()

	_, other := tracer.Start(ctx, "extract.pdf")
	other.End()

	assert.Equal(t, []string{"compress.document", "extract.pdf"}, rec.SpanNames())

	got := rec.EndedSpan("compress.document")
	require.NotNil(t, got)
	attrs := got.Attributes()
	require.Len(t, attrs, 1)
	assert.Equal(t, "algorithm", string(attrs[0].Key))
	assert.Equal(t, "extractive", attrs[0].Value.AsString())

	assert.Nil(t, rec.EndedSpan("never-started"))
}

func TestRecorder_Metrics(t *testing.T) {
	rec := NewRecorder()
	ctx := context.Background()

	counter, err := rec.Meter("test").Int64Counter("documents.processed")
	require.NoError(t, err)
	counter.Add(ctx, 3)
	counter.Add(ctx, 4)

	rm, err := rec.Collect(ctx)
	require.NoError(t, err)
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)

	m := rm.ScopeMetrics[0].Metrics[0]
	assert.Equal(t, "documents.processed", m.Name)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(7), sum.DataPoints[0].Value)
}

func TestRecorder_IsActive(t *testing.T) {
	rec := NewRecorder()
	assert.True(t, rec.Active())
	assert.Empty(t, rec.Degraded())
}
