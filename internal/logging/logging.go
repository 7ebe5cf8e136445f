package logging

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TraceLevel sits below Debug for very chatty diagnostics: per-sentence
// scoring dumps, page-by-page extraction progress, event bus payloads.
// Production configs filter it out.
const TraceLevel = zapcore.Level(-2)

// ParseLevel parses a level name, accepting "trace" on top of the names zap
// knows.
func ParseLevel(name string) (zapcore.Level, error) {
	if name == "trace" {
		return TraceLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return zapcore.InfoLevel, err
	}
	return level, nil
}

// Options selects the logger's outputs and filters.
type Options struct {
	Level  zapcore.Level
	Format string // "json" or "console"

	// Service is attached to every entry as a constant field.
	Service string

	// Sampling drops repetitive entries below Error level. Error and
	// above always pass.
	Sampling bool

	// ScrubKeys and ScrubPatterns mask secret-bearing fields in output.
	// Empty slices fall back to the built-in lists.
	ScrubKeys     []string
	ScrubPatterns []string

	// Caller annotates entries with file:line.
	Caller bool

	// OTELProvider, when set, tees entries to an OpenTelemetry log bridge
	// in addition to stdout.
	OTELProvider log.LoggerProvider
}

// DefaultOptions returns the daemon defaults: JSON to stdout at Info, with
// sampling and scrubbing on.
func DefaultOptions() Options {
	return Options{
		Level:    zapcore.InfoLevel,
		Format:   "json",
		Service:  "pdfsqueeze",
		Sampling: true,
		Caller:   true,
	}
}

// New builds a logger per opts. The returned logger writes to stdout and,
// when an OTel provider is given, to the collector as well.
func New(opts Options) (*zap.Logger, error) {
	if opts.Format != "json" && opts.Format != "console" {
		return nil, fmt.Errorf("logging: unknown format %q", opts.Format)
	}

	encoder, err := newScrubEncoder(newEncoder(opts.Format), opts.ScrubKeys, opts.ScrubPatterns)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), opts.Level)
	if opts.OTELProvider != nil {
		bridge := otelzap.NewCore("pdfsqueeze", otelzap.WithLoggerProvider(opts.OTELProvider))
		core = zapcore.NewTee(core, bridge)
	}
	if opts.Sampling {
		core = sampleBelowError(core)
	}

	zopts := []zap.Option{}
	if opts.Caller {
		zopts = append(zopts, zap.AddCaller())
	}

	logger := zap.New(core, zopts...)
	if opts.Service != "" {
		logger = logger.With(zap.String("service", opts.Service))
	}
	return logger, nil
}

func newEncoder(format string) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if format == "console" {
		return zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewJSONEncoder(cfg)
}

// Sampling policy for entries below Error.
const (
	samplerTick       = time.Second
	samplerFirst      = 100
	samplerThereafter = 10
)

// sampleBelowError wraps core so Warn and below go through a zap sampler
// while Error and above always reach the sink.
func sampleBelowError(core zapcore.Core) zapcore.Core {
	sampled := zapcore.NewSamplerWithOptions(core, samplerTick, samplerFirst, samplerThereafter)
	return &splitCore{sampled: sampled, full: core}
}

// splitCore routes entries at or above Error to the unsampled core and the
// rest to the sampled one. Both wrap the same sink.
type splitCore struct {
	sampled zapcore.Core
	full    zapcore.Core
}

func (c *splitCore) Enabled(level zapcore.Level) bool {
	return c.full.Enabled(level)
}

func (c *splitCore) With(fields []zapcore.Field) zapcore.Core {
	return &splitCore{
		sampled: c.sampled.With(fields),
		full:    c.full.With(fields),
	}
}

func (c *splitCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if entry.Level >= zapcore.ErrorLevel {
		return c.full.Check(entry, checked)
	}
	return c.sampled.Check(entry, checked)
}

func (c *splitCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	return c.full.Write(entry, fields)
}

func (c *splitCore) Sync() error {
	return c.full.Sync()
}

// Flush syncs the logger, swallowing the EINVAL/ENOTTY that Linux returns
// when stdout is a terminal or pipe.
func Flush(logger *zap.Logger) error {
	err := logger.Sync()
	if err == nil {
		return nil
	}
	var errno syscall.Errno
	if errors.As(err, &errno) && (errno == syscall.EINVAL || errno == syscall.ENOTTY) {
		return nil
	}
	return err
}
