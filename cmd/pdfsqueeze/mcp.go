package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pdfsqueeze/internal/mcp"
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	Long: `Run the pdfsqueeze MCP server on stdio for editor and agent integration.

The server exposes the compress_text, compress_file, and estimate_tokens
tools. Stdout carries the MCP protocol; logs go to stderr.

Examples:
  # Run the MCP server (typically launched by the MCP client)
  pdfsqueeze mcp`,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	compressor, extractor, err := initServices(cfg)
	if err != nil {
		return err
	}

	redactor, err := newRedactor(cfg)
	if err != nil {
		return err
	}

	// Stdout carries the MCP protocol, so the logger must write to stderr.
	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	srv, err := mcp.New(mcp.Options{
		Version:    version,
		Logger:     logger,
		Compressor: compressor,
		Extractor:  extractor,
		Redactor:   redactor,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
