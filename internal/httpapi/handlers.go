package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pdfsqueeze/internal/compress"
	"github.com/fyrsmithlabs/pdfsqueeze/internal/events"
	"github.com/fyrsmithlabs/pdfsqueeze/internal/logging"
)

// sseHeartbeatInterval keeps proxies from timing out idle event streams.
const sseHeartbeatInterval = 30 * time.Second

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// CompressRequest is the request body for POST /api/v1/compress.
type CompressRequest struct {
	Text             string  `json:"text"`
	MaxTokens        int     `json:"max_tokens"`
	CompressionRatio float64 `json:"compression_ratio"`
	Algorithm        string  `json:"algorithm"`
	Redact           bool    `json:"redact"`
}

// CompressResponse is the response body for POST /api/v1/compress.
type CompressResponse struct {
	OperationID      string  `json:"operation_id"`
	Text             string  `json:"text"`
	Algorithm        string  `json:"algorithm"`
	OriginalTokens   int     `json:"original_tokens"`
	CompressedTokens int     `json:"compressed_tokens"`
	RetentionPercent float64 `json:"retention_percent"`
	Compressed       bool    `json:"compressed"`
	QualityScore     float64 `json:"quality_score"`
	DurationMS       int64   `json:"duration_ms"`
	Redactions       int     `json:"redactions,omitempty"`
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: "pdfsqueeze",
	})
}

// handleCompress compresses the provided text within the token budget.
func (s *Server) handleCompress(c echo.Context) error {
	var req CompressRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid compress request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text field is required")
	}
	if req.Redact && s.redactor == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "redaction is not enabled on this server")
	}

	ctx := c.Request().Context()
	algorithm := compress.Algorithm(req.Algorithm)
	if algorithm == "" {
		algorithm = s.compressor.DefaultAlgorithm()
	}

	opts := s.compressor.Options()
	if req.MaxTokens > 0 {
		opts.MaxTokens = req.MaxTokens
	}
	if req.CompressionRatio > 0 {
		opts.Ratio = req.CompressionRatio
	}

	opID := s.registry.Create(ctx, events.SourceInline, string(algorithm))
	ctx = logging.WithOperationID(ctx, opID)
	if err := s.registry.Started(opID); err != nil {
		s.logger.Warn("failed to publish started event", zap.String("operation_id", opID), zap.Error(err))
	}

	result, err := s.compressor.Compress(ctx, req.Text, algorithm, opts)
	if err != nil {
		if pubErr := s.registry.Error(opID, err); pubErr != nil {
			s.logger.Warn("failed to publish error event", zap.String("operation_id", opID), zap.Error(pubErr))
		}
		recordCompressionError(string(algorithm))
		return compressHTTPError(err)
	}

	// Redaction scrubs the compressed output. Scrubbing the input instead
	// would feed marker tokens into the frequency table and change which
	// sentences are selected.
	text := result.Text
	redactions := 0
	if req.Redact {
		redacted := s.redactor.Redact(text)
		text = redacted.Text
		redactions = redacted.Audit.Count()
		if redacted.Audit.HasRedactions() {
			s.logger.Debug("redacted secrets",
				append(logging.ContextFields(ctx),
					zap.Int("count", redactions),
					zap.String("audit", redacted.Audit.JSON()),
				)...)
		}
	}

	completion := events.Completion{
		OriginalTokens:   result.OriginalTokens,
		CompressedTokens: result.FinalTokens,
		RetentionPercent: result.RetentionRounded(),
		QualityScore:     result.QualityScore,
	}
	if err := s.registry.Complete(opID, completion); err != nil {
		s.logger.Warn("failed to publish completed event", zap.String("operation_id", opID), zap.Error(err))
	}

	recordCompressionResult(string(result.Algorithm), result.ProcessingTime, result.OriginalTokens, result.FinalTokens)

	s.logger.Debug("compressed text",
		append(logging.ContextFields(ctx),
			zap.String("algorithm", string(result.Algorithm)),
			zap.Int("original_tokens", result.OriginalTokens),
			zap.Int("compressed_tokens", result.FinalTokens),
			zap.Duration("duration", result.ProcessingTime),
		)...)

	return c.JSON(http.StatusOK, CompressResponse{
		OperationID:      opID,
		Text:             text,
		Algorithm:        string(result.Algorithm),
		OriginalTokens:   result.OriginalTokens,
		CompressedTokens: result.FinalTokens,
		RetentionPercent: result.RetentionRounded(),
		Compressed:       result.Compressed,
		QualityScore:     result.QualityScore,
		DurationMS:       result.ProcessingTime.Milliseconds(),
		Redactions:       redactions,
	})
}

// compressHTTPError maps compression errors onto HTTP status codes.
func compressHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, compress.ErrInvalidRatio),
		errors.Is(err, compress.ErrInvalidMaxTokens),
		errors.Is(err, compress.ErrUnknownAlgorithm):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, compress.ErrContentTooLarge):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// handleStats returns the rolling compression statistics.
func (s *Server) handleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.collector.Snapshot())
}

// handleEvents streams one operation's lifecycle via Server-Sent Events.
//
// The handler subscribes to the operation's NATS subjects and relays each
// event to the client. The connection stays open until the operation
// completes or fails, or the client disconnects.
//
// Example:
//
//	GET /api/v1/events/{id}
//
//	event: started
//	data: {"id":"op-123","source":"inline","status":"running"}
//
//	event: completed
//	data: {"id":"op-123","original_tokens":2000,"compressed_tokens":900}
func (s *Server) handleEvents(c echo.Context) error {
	opID := c.Param("id")

	if _, err := s.registry.Get(opID); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "operation not found",
		})
	}

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	msgChan := make(chan *nats.Msg, 10)
	sub, err := s.nats.ChanSubscribe(events.OperationSubjects(opID), msgChan)
	if err != nil {
		return err
	}
	defer func() {
		_ = sub.Unsubscribe()
	}()

	ticker := time.NewTicker(sseHeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-msgChan:
			parts := strings.Split(msg.Subject, ".")
			if len(parts) != 3 {
				continue
			}
			eventType := parts[2] // started, completed, error

			fmt.Fprintf(c.Response(), "event: %s\n", eventType)
			fmt.Fprintf(c.Response(), "data: %s\n\n", string(msg.Data))
			c.Response().Flush()

			// Close stream on completion or error
			if eventType == events.EventCompleted || eventType == events.EventError {
				return nil
			}

		case <-ticker.C:
			// Keep the connection alive through proxies
			fmt.Fprintf(c.Response(), ": heartbeat\n\n")
			c.Response().Flush()

		case <-c.Request().Context().Done():
			// Client disconnected
			return nil
		}
	}
}
