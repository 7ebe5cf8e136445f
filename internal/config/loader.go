package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	// envPrefix namespaces pdfsqueeze environment variables so the tool
	// does not pick up unrelated SERVER_* or LOGGING_* vars.
	envPrefix = "PDFSQUEEZE_"
)

// Load loads configuration from YAML file, then overrides with environment
// variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (PDFSQUEEZE_COMPRESS_MAX_TOKENS, ...)
//  2. YAML config file (~/.config/pdfsqueeze/config.yaml)
//  3. Hardcoded defaults
//
// The configPath parameter specifies the YAML file to load. If empty, uses
// the default path ~/.config/pdfsqueeze/config.yaml. A missing file is not
// an error; defaults and environment apply.
//
// # Security Considerations
//
// File permissions: the config file must be 0600 or 0400. Files readable by
// group or world are rejected.
//
// Path validation: only files under ~/.config/pdfsqueeze/ or /etc/pdfsqueeze/
// can be loaded. Paths outside these directories are rejected to prevent
// path traversal.
//
// File size: files larger than 1MB are rejected.
//
// # Environment Variable Mapping
//
// Variables are prefixed with PDFSQUEEZE_ and split on the first underscore
// after the prefix into section and field:
//
//	PDFSQUEEZE_COMPRESS_MAX_TOKENS  -> compress.max_tokens
//	PDFSQUEEZE_SERVER_HTTP_PORT    -> server.http_port
//	PDFSQUEEZE_LOGGING_LEVEL       -> logging.level
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Use default config path if not specified
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".config", "pdfsqueeze", "config.yaml")
	}

	// Validate config path (even if file doesn't exist)
	if err := validateConfigPath(configPath); err != nil {
		return nil, fmt.Errorf("config path validation failed: %w", err)
	}

	// Load from YAML file if it exists
	if _, err := os.Stat(configPath); err == nil {
		// Open once and validate via the file descriptor to avoid a
		// TOCTOU race between stat and read.
		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}

		if err := validateConfigFileProperties(info); err != nil {
			return nil, fmt.Errorf("config file validation failed: %w", err)
		}

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Override with environment variables. After stripping the prefix,
	// split on the first underscore only (section.field_name pattern):
	//
	//	PDFSQUEEZE_COMPRESS_MAX_TOKENS -> compress.max_tokens
	//	PDFSQUEEZE_SERVER_HTTP_PORT   -> server.http_port
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)

		if len(parts) == 1 {
			return lower
		}

		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply defaults for fields the file or env left unset
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// NewDefaultConfig returns configuration with production-ready defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Compress: CompressConfig{
			MaxTokens:        100000,
			CompressionRatio: 0.5,
			Algorithm:        AlgorithmAuto,
			Redact:           false,
		},
		Extract: ExtractConfig{
			MaxPages:  1000,
			MaxFileMB: 100,
		},
		Server: ServerConfig{
			Port:            8419,
			ShutdownTimeout: Duration(10 * time.Second),
			RateLimitRPS:    50,
			RateLimitBurst:  100,
		},
		Events: EventsConfig{
			URL:          "",  // empty = embedded broker
			StatsHistory: 120, // samples kept for the monitor sparklines
		},
		Telemetry: TelemetryConfig{
			Enabled:    false,
			Endpoint:   "localhost:4317",
			Protocol:   "grpc",
			Insecure:   true,
			SampleRate: 1.0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Monitor: MonitorConfig{
			Endpoint:        "http://localhost:8419",
			RefreshInterval: Duration(2 * time.Second),
		},
		Watch: WatchConfig{
			Debounce:     Duration(500 * time.Millisecond),
			PollInterval: Duration(30 * time.Second),
		},
	}
}

// EnsureConfigDir creates the pdfsqueeze config directory if it doesn't
// exist. The directory is created with 0700 permissions.
func EnsureConfigDir() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(home, ".config", "pdfsqueeze")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", configDir, err)
	}

	return nil
}

// validateConfigPath checks if path is in allowed directories.
// This validation runs even if the file doesn't exist yet.
func validateConfigPath(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	// Resolve symlinks so a link cannot escape the allowed directories.
	// If evaluation fails the path may not exist yet; validate absPath.
	resolvedPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		resolvedPath = absPath
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	allowedDirs := []string{
		filepath.Join(home, ".config", "pdfsqueeze"),
		"/etc/pdfsqueeze",
	}

	allowed := false
	for _, dir := range allowedDirs {
		if strings.HasPrefix(resolvedPath, dir) {
			allowed = true
			break
		}
	}

	if !allowed {
		return fmt.Errorf("config file must be in ~/.config/pdfsqueeze/ or /etc/pdfsqueeze/")
	}

	return nil
}

// validateConfigFileProperties checks file permissions and size.
// Takes FileInfo from an already-opened file descriptor to avoid TOCTOU race.
func validateConfigFileProperties(info os.FileInfo) error {
	// Check file permissions (must be 0600 or 0400).
	// Skip on Windows (different permission model).
	if runtime.GOOS != "windows" {
		perm := info.Mode().Perm()
		if perm != 0600 && perm != 0400 {
			return fmt.Errorf("insecure config file permissions: %v (expected 0600 or 0400)", perm)
		}
	}

	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	return nil
}

// applyDefaults fills fields that remain zero after file and env merge.
func applyDefaults(cfg *Config) {
	def := NewDefaultConfig()

	if cfg.Compress.MaxTokens == 0 {
		cfg.Compress.MaxTokens = def.Compress.MaxTokens
	}
	if cfg.Compress.CompressionRatio == 0 {
		cfg.Compress.CompressionRatio = def.Compress.CompressionRatio
	}
	if cfg.Compress.Algorithm == "" {
		cfg.Compress.Algorithm = def.Compress.Algorithm
	}

	if cfg.Extract.MaxPages == 0 {
		cfg.Extract.MaxPages = def.Extract.MaxPages
	}
	if cfg.Extract.MaxFileMB == 0 {
		cfg.Extract.MaxFileMB = def.Extract.MaxFileMB
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = def.Server.ShutdownTimeout
	}
	if cfg.Server.RateLimitRPS == 0 {
		cfg.Server.RateLimitRPS = def.Server.RateLimitRPS
	}
	if cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = def.Server.RateLimitBurst
	}

	if cfg.Events.StatsHistory == 0 {
		cfg.Events.StatsHistory = def.Events.StatsHistory
	}

	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = def.Telemetry.Endpoint
		// No endpoint configured means the default localhost collector;
		// plaintext is the only thing that works there.
		cfg.Telemetry.Insecure = def.Telemetry.Insecure
	}
	if cfg.Telemetry.Protocol == "" {
		cfg.Telemetry.Protocol = def.Telemetry.Protocol
	}
	if cfg.Telemetry.SampleRate == 0 {
		cfg.Telemetry.SampleRate = def.Telemetry.SampleRate
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = def.Logging.Format
	}

	if cfg.Monitor.Endpoint == "" {
		cfg.Monitor.Endpoint = def.Monitor.Endpoint
	}
	if cfg.Monitor.RefreshInterval == 0 {
		cfg.Monitor.RefreshInterval = def.Monitor.RefreshInterval
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = def.Watch.Debounce
	}
	if cfg.Watch.PollInterval == 0 {
		cfg.Watch.PollInterval = def.Watch.PollInterval
	}
}
