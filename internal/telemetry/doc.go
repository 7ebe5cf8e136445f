// Package telemetry wires pdfsqueeze to an OpenTelemetry collector.
//
// New starts OTLP trace and metric exporters (gRPC by default, HTTP/protobuf
// optional) and installs the providers globally, so instrumented packages
// pick them up through otel.Tracer and otel.Meter. Plaintext transport is
// only permitted toward local collectors; remote endpoints must use TLS.
//
// Exporter failures never take the process down. The Telemetry instance
// degrades to no-op providers and reports what went wrong through Degraded:
//
//	tel, err := telemetry.New(ctx, cfg)
//	if err != nil {
//	    return err // config error, not an exporter error
//	}
//	defer tel.Shutdown(ctx)
//	if reason := tel.Degraded(); reason != "" {
//	    log.Warn("telemetry degraded", zap.String("reason", reason))
//	}
//
// Metric temporality is pinned to cumulative for compatibility with
// Prometheus-style backends.
//
// Tests use NewRecorder, which swaps the OTLP exporters for in-memory ones
// without touching global state.
package telemetry
