// Pdfsqueeze is the CLI for the pdfsqueeze compression engine.
//
// It compresses PDF and plain-text documents to a token budget locally,
// watches drop folders, serves MCP tools over stdio, and opens a live
// dashboard for a running pdfsqueezed daemon.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/pdfsqueeze/internal/compress"
	"github.com/fyrsmithlabs/pdfsqueeze/internal/config"
	"github.com/fyrsmithlabs/pdfsqueeze/internal/extract"
	"github.com/fyrsmithlabs/pdfsqueeze/internal/redact"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// configPath overrides the default config file location
var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pdfsqueeze",
	Short: "Compress documents to a token budget",
	Long: `pdfsqueeze extracts text from PDF and plain-text documents and compresses
it to fit a token budget, keeping the highest-signal sentences.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/pdfsqueeze/config.yaml)")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pdfsqueeze by Fyrsmith Labs\n")
		fmt.Printf("Version:    %s\n", version)
		fmt.Printf("Commit:     %s\n", gitCommit)
		fmt.Printf("Build Date: %s\n", buildDate)
	},
}

// loadConfig resolves configuration from defaults, the optional config
// file, and PDFSQUEEZE_* environment overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// initServices builds the compression service and extraction registry
// from configuration.
func initServices(cfg *config.Config) (*compress.Service, *extract.Registry, error) {
	compressor, err := compress.NewService(compress.Config{
		DefaultAlgorithm: compress.Algorithm(cfg.Compress.Algorithm),
		MaxTokens:        cfg.Compress.MaxTokens,
		Ratio:            cfg.Compress.CompressionRatio,
		QualityThreshold: cfg.Compress.QualityThreshold,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create compression service: %w", err)
	}

	extractor := extract.NewRegistry(extract.Config{
		MaxPages:     cfg.Extract.MaxPages,
		MaxFileBytes: int64(cfg.Extract.MaxFileMB) << 20,
	})

	return compressor, extractor, nil
}

// newRedactor builds the secret redactor with the configured allowlist
// files applied.
func newRedactor(cfg *config.Config) (*redact.Redactor, error) {
	allowlist, err := redact.LoadAllowlist(cfg.Redact.AllowlistPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load redaction allowlist: %w", err)
	}
	redactor, err := redact.New(allowlist)
	if err != nil {
		return nil, fmt.Errorf("failed to create redactor: %w", err)
	}
	return redactor, nil
}
