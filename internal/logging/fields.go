package logging

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pdfsqueeze/internal/config"
)

type ctxKey int

const (
	ctxKeyOperationID ctxKey = iota
	ctxKeyRequestID
)

// WithOperationID tags ctx with a compression operation ID. IDs are
// generated by the operation registry, never taken from user input.
func WithOperationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyOperationID, id)
}

// OperationID returns the operation ID from ctx, or "".
func OperationID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyOperationID).(string)
	return id
}

// WithRequestID tags ctx with an HTTP request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// RequestID returns the request ID from ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID).(string)
	return id
}

// ContextFields extracts correlation fields from ctx: the active OTel span's
// trace and span IDs plus any operation and request IDs. Use it to stamp log
// entries emitted on behalf of a request:
//
//	logger.Info("compression complete", logging.ContextFields(ctx)...)
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 4)

	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if id := OperationID(ctx); id != "" {
		fields = append(fields, zap.String("operation_id", id))
	}
	if id := RequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}

	return fields
}

// Secret renders a config secret as a field that reveals only its length.
func Secret(key string, value config.Secret) zap.Field {
	if !value.IsSet() {
		return zap.String(key, "")
	}
	return zap.String(key, "[REDACTED:"+strconv.Itoa(len(value.Value()))+"]")
}

// Redacted renders an arbitrary string the same way Secret does.
func Redacted(key, value string) zap.Field {
	return zap.String(key, "[REDACTED:"+strconv.Itoa(len(value))+"]")
}
