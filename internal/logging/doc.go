// Package logging builds the zap logger used across pdfsqueeze.
//
// The daemon and CLI construct one root logger with New and pass it down as
// a plain *zap.Logger; there is no wrapper type. Options pick the level
// (including the custom Trace level below Debug), the encoding, sampling,
// and an optional OpenTelemetry log bridge that tees entries to a collector
// next to stdout.
//
// Entries below Error are sampled to keep hot paths cheap; Error and above
// always reach the sink. Field values are scrubbed before encoding: fields
// named like credentials ("token", "api_key", ...) and values that look like
// bearer tokens come out as [REDACTED] markers. Compressed document text is
// never logged, only its metrics.
//
// ContextFields stamps entries with the active trace, operation, and request
// IDs so daemon logs correlate with spans and SSE event streams:
//
//	logger.Info("compression complete",
//	    append(logging.ContextFields(ctx), zap.Int("final_tokens", n))...)
//
// Tests use Observe for an in-memory logger and LeakCheck to assert nothing
// secret-shaped reached the sink.
package logging
