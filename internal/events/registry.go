package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/trace"
)

// operationTTL is how long finished operations stay queryable in memory.
const operationTTL = 1 * time.Hour

// Registry manages compression operation lifecycle with NATS publishing.
//
// The registry tracks operations in memory for fast lookups and publishes
// all lifecycle events to NATS for SSE streaming and stats aggregation.
type Registry struct {
	nats       *nats.Conn
	operations sync.Map // operation_id -> *Operation
}

// NewRegistry creates an operation registry publishing to the given
// NATS connection.
func NewRegistry(nc *nats.Conn) *Registry {
	return &Registry{
		nats: nc,
	}
}

// Create creates a new operation and returns its ID.
//
// The operation is created in "pending" state. The trace ID is taken
// from the active OpenTelemetry span, if any.
func (r *Registry) Create(ctx context.Context, source, algorithm string) string {
	opID := uuid.New().String()

	if source == "" {
		source = SourceInline
	}

	op := &Operation{
		ID:        opID,
		Source:    source,
		Algorithm: algorithm,
		Status:    StatusPending,
		TraceID:   traceIDFromContext(ctx),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	r.operations.Store(opID, op)

	return opID
}

// Started publishes the "started" event and moves the operation to "running".
//
// Returns an error if the operation is unknown, marshaling fails, or the
// NATS publish fails.
func (r *Registry) Started(opID string) error {
	value, ok := r.operations.Load(opID)
	if !ok {
		return fmt.Errorf("operation not found: %s", opID)
	}

	op := value.(*Operation)
	op.Status = StatusRunning
	op.UpdatedAt = time.Now()

	data, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("marshal operation: %w", err)
	}

	if err := r.nats.Publish(Subject(opID, EventStarted), data); err != nil {
		return fmt.Errorf("publish started event: %w", err)
	}

	return nil
}

// Complete publishes the "completed" event and marks the operation completed.
//
// The event carries the token accounting plus the wall time since Create.
// Finished operations are dropped from memory after a TTL.
func (r *Registry) Complete(opID string, res Completion) error {
	value, ok := r.operations.Load(opID)
	if !ok {
		return fmt.Errorf("operation not found: %s", opID)
	}

	op := value.(*Operation)
	op.Status = StatusCompleted
	op.UpdatedAt = time.Now()

	event := CompletedEvent{
		ID:               opID,
		OriginalTokens:   res.OriginalTokens,
		CompressedTokens: res.CompressedTokens,
		RetentionPercent: res.RetentionPercent,
		QualityScore:     res.QualityScore,
		DurationMS:       time.Since(op.CreatedAt).Milliseconds(),
		Timestamp:        time.Now(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal completed event: %w", err)
	}

	if err := r.nats.Publish(Subject(opID, EventCompleted), data); err != nil {
		return fmt.Errorf("publish completed event: %w", err)
	}

	go r.scheduleCleanup(opID, operationTTL)

	return nil
}

// Error publishes the "error" event and marks the operation failed.
func (r *Registry) Error(opID string, opErr error) error {
	value, ok := r.operations.Load(opID)
	if !ok {
		return fmt.Errorf("operation not found: %s", opID)
	}

	op := value.(*Operation)
	op.Status = StatusFailed
	op.Error = opErr.Error()
	op.UpdatedAt = time.Now()

	event := ErrorEvent{
		ID:        opID,
		Message:   opErr.Error(),
		Timestamp: time.Now(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal error event: %w", err)
	}

	if err := r.nats.Publish(Subject(opID, EventError), data); err != nil {
		return fmt.Errorf("publish error event: %w", err)
	}

	go r.scheduleCleanup(opID, operationTTL)

	return nil
}

// Get retrieves an operation by ID.
func (r *Registry) Get(opID string) (*Operation, error) {
	value, ok := r.operations.Load(opID)
	if !ok {
		return nil, fmt.Errorf("operation not found: %s", opID)
	}
	return value.(*Operation), nil
}

// scheduleCleanup removes finished operations after the TTL so the
// in-memory registry does not grow indefinitely.
func (r *Registry) scheduleCleanup(opID string, ttl time.Duration) {
	time.Sleep(ttl)
	r.operations.Delete(opID)
}

// traceIDFromContext extracts the OTLP trace ID from the active span.
//
// Returns empty string when no span is recording.
func traceIDFromContext(ctx context.Context) string {
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}
