package config

import (
	"strings"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Compress.MaxTokens != 100000 {
		t.Errorf("Compress.MaxTokens = %d, want 100000", cfg.Compress.MaxTokens)
	}
	if cfg.Compress.CompressionRatio != 0.5 {
		t.Errorf("Compress.CompressionRatio = %g, want 0.5", cfg.Compress.CompressionRatio)
	}
	if cfg.Compress.Algorithm != AlgorithmAuto {
		t.Errorf("Compress.Algorithm = %q, want %q", cfg.Compress.Algorithm, AlgorithmAuto)
	}
	if cfg.Compress.Redact {
		t.Error("Compress.Redact = true, want false (disabled by default)")
	}
	if cfg.Extract.MaxPages != 1000 {
		t.Errorf("Extract.MaxPages = %d, want 1000", cfg.Extract.MaxPages)
	}
	if cfg.Server.Port != 8419 {
		t.Errorf("Server.Port = %d, want 8419", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout.Duration() != 10*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 10s", cfg.Server.ShutdownTimeout.Duration())
	}
	if cfg.Events.URL != "" {
		t.Errorf("Events.URL = %q, want empty (embedded broker)", cfg.Events.URL)
	}
	if cfg.Telemetry.Enabled {
		t.Error("Telemetry.Enabled = true, want false (disabled by default)")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}

	// Defaults must pass their own validation
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config { return NewDefaultConfig() }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "zero max tokens",
			mutate:  func(c *Config) { c.Compress.MaxTokens = 0 },
			wantErr: "max_tokens",
		},
		{
			name:    "negative max tokens",
			mutate:  func(c *Config) { c.Compress.MaxTokens = -5 },
			wantErr: "max_tokens",
		},
		{
			name:    "ratio zero",
			mutate:  func(c *Config) { c.Compress.CompressionRatio = 0 },
			wantErr: "compression_ratio",
		},
		{
			name:    "ratio above one",
			mutate:  func(c *Config) { c.Compress.CompressionRatio = 1.5 },
			wantErr: "compression_ratio",
		},
		{
			name:    "unknown algorithm",
			mutate:  func(c *Config) { c.Compress.Algorithm = "magic" },
			wantErr: "algorithm",
		},
		{
			name:    "quality threshold negative",
			mutate:  func(c *Config) { c.Compress.QualityThreshold = -0.1 },
			wantErr: "quality_threshold",
		},
		{
			name:    "quality threshold above one",
			mutate:  func(c *Config) { c.Compress.QualityThreshold = 1.5 },
			wantErr: "quality_threshold",
		},
		{
			name:    "zero max pages",
			mutate:  func(c *Config) { c.Extract.MaxPages = 0 },
			wantErr: "max_pages",
		},
		{
			name:    "port too low",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "port",
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "port",
		},
		{
			name:    "zero shutdown timeout",
			mutate:  func(c *Config) { c.Server.ShutdownTimeout = 0 },
			wantErr: "shutdown timeout",
		},
		{
			name:    "zero rate limit",
			mutate:  func(c *Config) { c.Server.RateLimitRPS = 0 },
			wantErr: "rate_limit_rps",
		},
		{
			name: "telemetry enabled without endpoint",
			mutate: func(c *Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.Endpoint = ""
			},
			wantErr: "telemetry.endpoint",
		},
		{
			name: "telemetry sample rate out of range",
			mutate: func(c *Config) {
				c.Telemetry.Enabled = true
				c.Telemetry.SampleRate = 2.0
			},
			wantErr: "sample_rate",
		},
		{
			name:    "bad logging format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "logging.format",
		},
		{
			name:    "zero watch debounce",
			mutate:  func(c *Config) { c.Watch.Debounce = 0 },
			wantErr: "debounce",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
