package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Supported OTLP transport protocols.
const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http/protobuf"
)

// Config controls the OTLP exporters. It is populated programmatically by
// the daemon from its own config file section, so it carries no unmarshal
// tags of its own.
type Config struct {
	Enabled        bool
	Endpoint       string // collector address, host:port
	Protocol       string // ProtocolGRPC (default) or ProtocolHTTP
	ServiceName    string
	ServiceVersion string

	// Insecure disables TLS. Only allowed for local collectors.
	Insecure bool
	// TLSSkipVerify accepts any certificate, for collectors behind
	// internal CAs.
	TLSSkipVerify bool

	// SampleRate is the head-sampling ratio in [0, 1]. Values at or above
	// 1 always sample, at or below 0 never sample.
	SampleRate float64

	MetricsEnabled bool
	ExportInterval time.Duration

	// ShutdownGrace bounds Shutdown when the caller's context has no
	// deadline of its own.
	ShutdownGrace time.Duration
}

// DefaultConfig returns the daemon defaults: disabled, pointed at a local
// collector, sampling everything.
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		Endpoint:       "localhost:4317",
		Protocol:       ProtocolGRPC,
		ServiceName:    "pdfsqueeze",
		ServiceVersion: "0.1.0",
		Insecure:       true,
		SampleRate:     1.0,
		MetricsEnabled: true,
		ExportInterval: 15 * time.Second,
		ShutdownGrace:  5 * time.Second,
	}
}

// Validate checks the config. A disabled config is always valid.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Endpoint == "" {
		return errors.New("telemetry: endpoint required")
	}
	if c.Protocol != "" && c.Protocol != ProtocolGRPC && c.Protocol != ProtocolHTTP {
		return fmt.Errorf("telemetry: unknown protocol %q", c.Protocol)
	}
	if c.ServiceName == "" {
		return errors.New("telemetry: service name required")
	}
	if c.ServiceVersion == "" {
		return errors.New("telemetry: service version required")
	}
	if c.Insecure && !localEndpoint(c.Endpoint) {
		return fmt.Errorf("telemetry: refusing insecure connection to remote endpoint %q", c.Endpoint)
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("telemetry: sample rate %v outside [0, 1]", c.SampleRate)
	}
	if c.MetricsEnabled && c.ExportInterval <= 0 {
		return errors.New("telemetry: export interval must be positive")
	}
	if c.ShutdownGrace <= 0 {
		return errors.New("telemetry: shutdown grace must be positive")
	}
	return nil
}

// localEndpoint reports whether endpoint points at this machine. Plaintext
// OTLP is acceptable there and nowhere else.
func localEndpoint(endpoint string) bool {
	host := endpointHost(endpoint)
	switch {
	case host == "localhost", host == "::1":
		return true
	case strings.HasPrefix(host, "127."):
		return true
	case strings.HasPrefix(host, "::1:"): // unbracketed IPv6 with port
		return true
	}
	return false
}

// endpointHost strips an optional scheme, port, and IPv6 brackets from an
// endpoint, leaving the bare host.
func endpointHost(endpoint string) string {
	host := trimScheme(endpoint)
	if strings.HasPrefix(host, "[") {
		if end := strings.Index(host, "]"); end > 0 {
			return host[1:end]
		}
		return strings.Trim(host, "[]")
	}
	// host:port with a single colon; anything with more colons is raw IPv6
	if strings.Count(host, ":") == 1 {
		if i := strings.LastIndex(host, ":"); i != -1 {
			return host[:i]
		}
	}
	return host
}

// Telemetry owns the tracer and meter providers for the process. A zero or
// disabled Telemetry is safe to use everywhere; its accessors hand back the
// global (no-op) providers.
type Telemetry struct {
	cfg      Config
	traces   *sdktrace.TracerProvider
	metrics  *sdkmetric.MeterProvider
	degraded []string
}

// New validates cfg and starts the providers. Exporter construction failures
// do not fail the application; the instance records them and serves no-op
// providers instead. Inspect Degraded for the reasons.
func New(ctx context.Context, cfg Config) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Telemetry{cfg: cfg}
	if !cfg.Enabled {
		return t, nil
	}

	res := buildResource(cfg)

	tp, err := newTraceProvider(ctx, cfg, res)
	if err != nil {
		t.degraded = append(t.degraded, fmt.Sprintf("traces: %v", err))
	} else {
		t.traces = tp
		otel.SetTracerProvider(tp)
	}

	mp, err := newMeterProvider(ctx, cfg, res)
	if err != nil {
		t.degraded = append(t.degraded, fmt.Sprintf("metrics: %v", err))
	} else if mp != nil {
		t.metrics = mp
		otel.SetMeterProvider(mp)
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return t, nil
}

// Tracer returns a tracer for the given instrumentation scope, falling back
// to the global provider when telemetry is off.
func (t *Telemetry) Tracer(name string) oteltrace.Tracer {
	if t == nil || t.traces == nil {
		return otel.GetTracerProvider().Tracer(name)
	}
	return t.traces.Tracer(name)
}

// Meter returns a meter for the given instrumentation scope, falling back to
// the global provider when telemetry is off.
func (t *Telemetry) Meter(name string) metric.Meter {
	if t == nil || t.metrics == nil {
		return otel.GetMeterProvider().Meter(name)
	}
	return t.metrics.Meter(name)
}

// Active reports whether spans are actually being exported.
func (t *Telemetry) Active() bool {
	return t != nil && t.traces != nil
}

// Degraded returns a description of any exporter that failed to start, or
// the empty string when everything came up.
func (t *Telemetry) Degraded() string {
	if t == nil {
		return ""
	}
	return strings.Join(t.degraded, "; ")
}

// ForceFlush exports pending spans and metrics immediately.
func (t *Telemetry) ForceFlush(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error
	if t.traces != nil {
		if err := t.traces.ForceFlush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush traces: %w", err))
		}
	}
	if t.metrics != nil {
		if err := t.metrics.ForceFlush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush metrics: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Shutdown flushes and stops the providers. When ctx carries no deadline the
// configured shutdown grace is applied.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline && t.cfg.ShutdownGrace > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.ShutdownGrace)
		defer cancel()
	}

	var errs []error
	if t.traces != nil {
		if err := t.traces.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown traces: %w", err))
		}
	}
	if t.metrics != nil {
		if err := t.metrics.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown metrics: %w", err))
		}
	}
	return errors.Join(errs...)
}
