// Package events tracks compression operations and publishes their
// lifecycle to NATS for streaming and aggregation.
//
// Each operation publishes events to subjects:
//   - compressions.{operation_id}.started
//   - compressions.{operation_id}.completed
//   - compressions.{operation_id}.error
//
// Example usage:
//
//	registry := events.NewRegistry(natsConn)
//	opID := registry.Create(ctx, "report.pdf", "extractive")
//	registry.Started(opID)
//	registry.Complete(opID, completion)
package events

import (
	"fmt"
	"time"
)

// Operation lifecycle states.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Event types published per operation.
const (
	EventStarted   = "started"
	EventCompleted = "completed"
	EventError     = "error"
)

// SourceInline marks operations whose input arrived in the request body
// rather than from a file.
const SourceInline = "inline"

// Operation represents a tracked compression job.
//
// Operations move through pending -> running -> completed|failed. The
// started event carries the full operation; completed and error events
// carry their own payloads.
type Operation struct {
	ID        string    `json:"id"`                 // Operation UUID
	Source    string    `json:"source"`             // Document path or "inline"
	Algorithm string    `json:"algorithm"`          // Requested algorithm
	Status    string    `json:"status"`             // pending|running|completed|failed
	TraceID   string    `json:"trace_id,omitempty"` // OTLP trace ID for correlation
	Error     string    `json:"error,omitempty"`    // Failure message (when failed)
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Completion carries the token accounting for a finished operation.
type Completion struct {
	OriginalTokens   int     `json:"original_tokens"`
	CompressedTokens int     `json:"compressed_tokens"`
	RetentionPercent float64 `json:"retention_percent"`
	QualityScore     float64 `json:"quality_score,omitempty"`
}

// CompletedEvent is published to compressions.{id}.completed.
type CompletedEvent struct {
	ID               string    `json:"id"`
	OriginalTokens   int       `json:"original_tokens"`
	CompressedTokens int       `json:"compressed_tokens"`
	RetentionPercent float64   `json:"retention_percent"`
	QualityScore     float64   `json:"quality_score,omitempty"`
	DurationMS       int64     `json:"duration_ms"`
	Timestamp        time.Time `json:"timestamp"`
}

// ErrorEvent is published to compressions.{id}.error.
type ErrorEvent struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Subject returns the NATS subject for one event type of one operation.
func Subject(opID, eventType string) string {
	return fmt.Sprintf("compressions.%s.%s", opID, eventType)
}

// OperationSubjects returns the wildcard subject matching every event
// of one operation.
func OperationSubjects(opID string) string {
	return fmt.Sprintf("compressions.%s.>", opID)
}

// AllSubjects is the wildcard subject matching every compression event.
const AllSubjects = "compressions.>"
