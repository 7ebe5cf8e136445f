// Pdfsqueezed is the compression daemon for pdfsqueeze.
//
// It serves the compression REST API, aggregate statistics for the monitor,
// per-operation event streams over SSE, and Prometheus metrics. Operation
// events flow over NATS; when no external broker is configured the daemon
// embeds one, so a single binary needs no extra infrastructure.
//
// Configuration is loaded from ~/.config/pdfsqueeze/config.yaml and
// PDFSQUEEZE_* environment variables. See internal/config for details.
//
// Usage:
//
//	# Start the daemon with defaults
//	pdfsqueezed
//
//	# Override the listener through the environment
//	PDFSQUEEZE_SERVER_HTTP_PORT=9000 pdfsqueezed
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pdfsqueeze/internal/compress"
	"github.com/fyrsmithlabs/pdfsqueeze/internal/config"
	"github.com/fyrsmithlabs/pdfsqueeze/internal/events"
	"github.com/fyrsmithlabs/pdfsqueeze/internal/httpapi"
	"github.com/fyrsmithlabs/pdfsqueeze/internal/logging"
	"github.com/fyrsmithlabs/pdfsqueeze/internal/redact"
	"github.com/fyrsmithlabs/pdfsqueeze/internal/telemetry"
)

// Build metadata, injected with -ldflags.
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var (
	configPath  = flag.String("config", "", "config file path (default ~/.config/pdfsqueeze/config.yaml)")
	showVersion = flag.Bool("version", false, "print build information and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("pdfsqueezed %s (commit %s, built %s)\n", version, gitCommit, buildDate)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "pdfsqueezed:", err)
		os.Exit(1)
	}
}

// run starts the daemon and blocks until ctx is cancelled.
//
// Wiring order: config, logger, telemetry, event bus (embedded broker when
// no external NATS is configured), services, HTTP listener. Shutdown
// unwinds in reverse through the deferred closers. Returns nil after a
// clean drain.
func run(ctx context.Context) error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	zlog, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() {
		_ = logging.Flush(zlog)
	}()

	zlog.Info("pdfsqueezed starting",
		zap.String("version", version),
		zap.Int("http_port", cfg.Server.Port))

	tel, err := newTelemetry(ctx, cfg)
	if err != nil {
		return fmt.Errorf("start telemetry: %w", err)
	}
	if reason := tel.Degraded(); reason != "" {
		zlog.Warn("telemetry degraded, continuing without it", zap.String("reason", reason))
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(flushCtx); err != nil {
			zlog.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	eventBus, err := connectBus(cfg, zlog)
	if err != nil {
		return fmt.Errorf("event bus: %w", err)
	}
	defer eventBus.close()

	compressor, redactor, err := buildServices(cfg)
	if err != nil {
		return err
	}

	srv, err := httpapi.NewServer(httpapi.Options{
		Compressor: compressor,
		Redactor:   redactor,
		Registry:   eventBus.registry,
		Collector:  eventBus.collector,
		NATS:       eventBus.conn,
		Logger:     zlog,
		Config: httpapi.Config{
			Port:            cfg.Server.Port,
			ShutdownTimeout: cfg.Server.ShutdownTimeout.Duration(),
			RateLimitRPS:    cfg.Server.RateLimitRPS,
			RateLimitBurst:  cfg.Server.RateLimitBurst,
		},
	})
	if err != nil {
		return fmt.Errorf("build http server: %w", err)
	}

	return srv.Start(ctx)
}

// bus bundles the NATS broker, the connection to it, and the consumers
// hanging off that connection.
type bus struct {
	embedded  *natsserver.Server
	conn      *nats.Conn
	registry  *events.Registry
	collector *events.Collector
}

// close releases the event bus in reverse start order.
func (b *bus) close() {
	if b.collector != nil {
		_ = b.collector.Close()
	}
	if b.conn != nil {
		b.conn.Close()
	}
	if b.embedded != nil {
		b.embedded.Shutdown()
	}
}

// connectBus starts or connects to NATS and wires the operation registry
// and stats collector to it. An empty events URL embeds a broker in
// process.
func connectBus(cfg *config.Config, logger *zap.Logger) (*bus, error) {
	b := &bus{}

	url := cfg.Events.URL
	if url == "" {
		embedded, err := events.StartEmbeddedBroker()
		if err != nil {
			return nil, fmt.Errorf("embedded broker: %w", err)
		}
		b.embedded = embedded
		url = embedded.ClientURL()
		logger.Info("embedded NATS broker up", zap.String("url", url))
	}

	var opts []nats.Option
	if cfg.Events.Token.IsSet() {
		opts = append(opts, nats.Token(cfg.Events.Token.Value()))
	}

	conn, err := events.Connect(url, opts...)
	if err != nil {
		b.close()
		return nil, err
	}
	b.conn = conn
	logger.Info("event bus connected",
		zap.String("url", url),
		logging.Secret("token", cfg.Events.Token))

	b.registry = events.NewRegistry(conn)

	collector, err := events.NewCollector(conn, cfg.Events.StatsHistory)
	if err != nil {
		b.close()
		return nil, fmt.Errorf("stats collector: %w", err)
	}
	b.collector = collector

	return b, nil
}

// newLogger builds the structured logger from daemon configuration.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.Logging.Level, err)
	}

	opts := logging.DefaultOptions()
	opts.Level = level
	opts.Format = cfg.Logging.Format
	return logging.New(opts)
}

// newTelemetry starts the OpenTelemetry providers. When telemetry is
// disabled the returned instance is a no-op that still shuts down cleanly.
func newTelemetry(ctx context.Context, cfg *config.Config) (*telemetry.Telemetry, error) {
	telCfg := telemetry.DefaultConfig()
	telCfg.Enabled = cfg.Telemetry.Enabled
	telCfg.Endpoint = cfg.Telemetry.Endpoint
	telCfg.Protocol = cfg.Telemetry.Protocol
	telCfg.Insecure = cfg.Telemetry.Insecure
	telCfg.TLSSkipVerify = cfg.Telemetry.TLSSkipVerify
	telCfg.ServiceVersion = version
	telCfg.SampleRate = cfg.Telemetry.SampleRate
	return telemetry.New(ctx, telCfg)
}

// buildServices constructs the compression and redaction services.
func buildServices(cfg *config.Config) (*compress.Service, *redact.Redactor, error) {
	compressor, err := compress.NewService(compress.Config{
		DefaultAlgorithm: compress.Algorithm(cfg.Compress.Algorithm),
		MaxTokens:        cfg.Compress.MaxTokens,
		Ratio:            cfg.Compress.CompressionRatio,
		QualityThreshold: cfg.Compress.QualityThreshold,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("compress service: %w", err)
	}

	allowlist, err := redact.LoadAllowlist(cfg.Redact.AllowlistPaths...)
	if err != nil {
		return nil, nil, fmt.Errorf("redaction allowlist: %w", err)
	}
	redactor, err := redact.New(allowlist)
	if err != nil {
		return nil, nil, fmt.Errorf("redactor: %w", err)
	}

	return compressor, redactor, nil
}
