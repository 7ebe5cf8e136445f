// Package config provides configuration loading for pdfsqueeze.
//
// Configuration is resolved from hardcoded defaults, an optional YAML file,
// and environment variable overrides, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
)

// Algorithm names accepted by the compress section.
const (
	AlgorithmAuto       = "auto"
	AlgorithmExtractive = "extractive"
	AlgorithmHeuristic  = "heuristic"
)

// Config holds the complete pdfsqueeze configuration.
type Config struct {
	Compress  CompressConfig  `koanf:"compress"`
	Extract   ExtractConfig   `koanf:"extract"`
	Redact    RedactConfig    `koanf:"redact"`
	Server    ServerConfig    `koanf:"server"`
	Events    EventsConfig    `koanf:"events"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Logging   LoggingConfig   `koanf:"logging"`
	Monitor   MonitorConfig   `koanf:"monitor"`
	Watch     WatchConfig     `koanf:"watch"`
}

// CompressConfig holds compression pipeline defaults. Per-request options
// override these values.
//
// QualityThreshold marks results whose composite quality score falls below
// it; 0 disables the check. Results are never rejected.
type CompressConfig struct {
	MaxTokens        int     `koanf:"max_tokens"`
	CompressionRatio float64 `koanf:"compression_ratio"`
	Algorithm        string  `koanf:"algorithm"`
	Redact           bool    `koanf:"redact"`
	QualityThreshold float64 `koanf:"quality_threshold"`
}

// ExtractConfig holds document extraction limits.
type ExtractConfig struct {
	MaxPages  int `koanf:"max_pages"`
	MaxFileMB int `koanf:"max_file_mb"`
}

// RedactConfig holds secret redaction settings. AllowlistPaths are TOML
// files whose patterns are excluded from detection; missing files are
// skipped, unparseable ones fail at startup.
type RedactConfig struct {
	AllowlistPaths []string `koanf:"allowlist_paths"`
}

// ServerConfig holds HTTP server configuration for pdfsqueezed.
type ServerConfig struct {
	Port            int      `koanf:"http_port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
	RateLimitRPS    float64  `koanf:"rate_limit_rps"`
	RateLimitBurst  int      `koanf:"rate_limit_burst"`
}

// EventsConfig holds NATS event bus configuration.
//
// When URL is empty the daemon embeds a nats-server on a loopback port
// and connects to it; set URL to use an external broker instead. Token
// authenticates against external brokers and is ignored for the embedded
// one; it never appears in logs or serialized config.
type EventsConfig struct {
	URL          string `koanf:"url"`
	Token        Secret `koanf:"token"`
	StatsHistory int    `koanf:"stats_history"`
}

// TelemetryConfig holds OpenTelemetry export settings. The daemon maps
// these onto the telemetry package's own config at startup.
type TelemetryConfig struct {
	Enabled       bool    `koanf:"enabled"`
	Endpoint      string  `koanf:"endpoint"`
	Protocol      string  `koanf:"protocol"`
	Insecure      bool    `koanf:"insecure"`
	TLSSkipVerify bool    `koanf:"tls_skip_verify"`
	SampleRate    float64 `koanf:"sample_rate"`
}

// LoggingConfig holds log output settings. The daemon maps these onto
// the logging package's own config at startup.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MonitorConfig holds monitor TUI defaults.
type MonitorConfig struct {
	Endpoint        string   `koanf:"endpoint"`
	RefreshInterval Duration `koanf:"refresh_interval"`
}

// WatchConfig holds watch-mode defaults.
type WatchConfig struct {
	Debounce     Duration `koanf:"debounce"`
	PollInterval Duration `koanf:"poll_interval"`
}

// Validate validates the configuration.
//
// Returns an error if:
//   - compress budget or ratio is out of range
//   - extraction limits are not positive
//   - server port is not between 1 and 65535
//   - shutdown timeout is not positive
func (c *Config) Validate() error {
	if c.Compress.MaxTokens < 1 {
		return fmt.Errorf("compress.max_tokens must be >= 1, got %d", c.Compress.MaxTokens)
	}
	if c.Compress.CompressionRatio <= 0 || c.Compress.CompressionRatio > 1 {
		return fmt.Errorf("compress.compression_ratio must be in (0, 1], got %g", c.Compress.CompressionRatio)
	}
	switch c.Compress.Algorithm {
	case AlgorithmAuto, AlgorithmExtractive, AlgorithmHeuristic:
	default:
		return fmt.Errorf("compress.algorithm must be auto, extractive, or heuristic, got %q", c.Compress.Algorithm)
	}
	if c.Compress.QualityThreshold < 0 || c.Compress.QualityThreshold > 1 {
		return fmt.Errorf("compress.quality_threshold must be in [0, 1], got %g", c.Compress.QualityThreshold)
	}

	if c.Extract.MaxPages < 1 {
		return fmt.Errorf("extract.max_pages must be >= 1, got %d", c.Extract.MaxPages)
	}
	if c.Extract.MaxFileMB < 1 {
		return fmt.Errorf("extract.max_file_mb must be >= 1, got %d", c.Extract.MaxFileMB)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout.Duration() <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.Server.RateLimitRPS <= 0 {
		return fmt.Errorf("server.rate_limit_rps must be positive, got %g", c.Server.RateLimitRPS)
	}
	if c.Server.RateLimitBurst < 1 {
		return fmt.Errorf("server.rate_limit_burst must be >= 1, got %d", c.Server.RateLimitBurst)
	}

	if c.Events.StatsHistory < 1 {
		return fmt.Errorf("events.stats_history must be >= 1, got %d", c.Events.StatsHistory)
	}

	if c.Telemetry.Enabled {
		if c.Telemetry.Endpoint == "" {
			return errors.New("telemetry.endpoint required when telemetry is enabled")
		}
		if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
			return fmt.Errorf("telemetry.sample_rate must be between 0 and 1, got %g", c.Telemetry.SampleRate)
		}
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", c.Logging.Format)
	}

	if c.Monitor.RefreshInterval.Duration() <= 0 {
		return errors.New("monitor.refresh_interval must be positive")
	}

	if c.Watch.Debounce.Duration() <= 0 {
		return errors.New("watch.debounce must be positive")
	}

	return nil
}
