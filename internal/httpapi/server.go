// Package httpapi provides the HTTP API for pdfsqueeze.
//
// The server exposes compression over REST, aggregate statistics for the
// monitor, per-operation event streams over SSE, and Prometheus metrics.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/pdfsqueeze/internal/compress"
	"github.com/fyrsmithlabs/pdfsqueeze/internal/events"
	"github.com/fyrsmithlabs/pdfsqueeze/internal/logging"
	"github.com/fyrsmithlabs/pdfsqueeze/internal/redact"
)

// Defaults applied to zero Config fields.
const (
	DefaultPort            = 8419
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRateLimitRPS    = 50
	DefaultRateLimitBurst  = 100
)

// Config holds the listener settings.
type Config struct {
	Port            int
	ShutdownTimeout time.Duration
	RateLimitRPS    float64
	RateLimitBurst  int
}

func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.RateLimitRPS == 0 {
		c.RateLimitRPS = DefaultRateLimitRPS
	}
	if c.RateLimitBurst == 0 {
		c.RateLimitBurst = DefaultRateLimitBurst
	}
	return c
}

// Options wires the server's collaborators. Redactor is optional; requests
// asking for redaction are rejected when it is nil.
type Options struct {
	Compressor *compress.Service
	Redactor   *redact.Redactor
	Registry   *events.Registry
	Collector  *events.Collector
	NATS       *nats.Conn
	Logger     *zap.Logger
	Config     Config
}

// Server exposes the compression engine over HTTP.
type Server struct {
	echo       *echo.Echo
	compressor *compress.Service
	redactor   *redact.Redactor
	registry   *events.Registry
	collector  *events.Collector
	nats       *nats.Conn
	logger     *zap.Logger
	config     Config
	limiter    *rate.Limiter
}

// NewServer assembles the router, middleware chain, and routes.
func NewServer(opts Options) (*Server, error) {
	switch {
	case opts.Compressor == nil:
		return nil, errors.New("compress service must not be nil")
	case opts.Registry == nil:
		return nil, errors.New("operation registry must not be nil")
	case opts.Collector == nil:
		return nil, errors.New("stats collector must not be nil")
	case opts.NATS == nil:
		return nil, errors.New("nats connection must not be nil")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	cfg := opts.Config.withDefaults()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:       e,
		compressor: opts.Compressor,
		redactor:   opts.Redactor,
		registry:   opts.Registry,
		collector:  opts.Collector,
		nats:       opts.NATS,
		logger:     opts.Logger,
		config:     cfg,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.accessLog)
	e.Use(newRequestMetrics(opts.Logger).middleware())

	s.routes()

	return s, nil
}

// routes binds the endpoint table. Health and the Prometheus scrape stay
// outside the rate limit.
func (s *Server) routes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1", s.throttle)
	v1.POST("/compress", s.handleCompress)
	v1.GET("/stats", s.handleStats)
	v1.GET("/events/:id", s.handleEvents)
}

// accessLog tags each request context with its request ID and writes one
// log line per request.
func (s *Server) accessLog(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		id := c.Response().Header().Get(echo.HeaderXRequestID)
		c.SetRequest(req.WithContext(logging.WithRequestID(req.Context(), id)))

		start := time.Now()
		err := next(c)

		s.logger.Info("request served",
			zap.String("request_id", id),
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", c.Response().Status),
			zap.Duration("elapsed", time.Since(start)),
		)
		return err
	}
}

// throttle rejects requests beyond the configured rate with 429.
func (s *Server) throttle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.limiter.Allow() {
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
		}
		return next(c)
	}
}

// Start serves until ctx is cancelled, then drains in-flight requests.
// A nil return means the server came down cleanly.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	errCh := make(chan error, 1)
	go func() { errCh <- s.echo.Start(addr) }()

	s.logger.Info("http listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		return fmt.Errorf("http listen on %s: %w", addr, err)
	case <-ctx.Done():
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("draining http connections", zap.Duration("timeout", s.config.ShutdownTimeout))
	if err := s.echo.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("drain http connections: %w", err)
	}
	return nil
}
