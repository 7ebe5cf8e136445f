package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pdfsqueeze/internal/compress"
	"github.com/fyrsmithlabs/pdfsqueeze/internal/extract"
	"github.com/fyrsmithlabs/pdfsqueeze/internal/redact"
)

const serverName = "pdfsqueeze"

// Options wires a Server to its backing services. Compressor and
// Extractor are required. Redactor may be nil; tool calls that set the
// redact flag then fail with an explanatory error.
type Options struct {
	Version    string
	Logger     *zap.Logger
	Compressor *compress.Service
	Extractor  *extract.Registry
	Redactor   *redact.Redactor
}

// Server exposes compression tools over the stdio transport.
type Server struct {
	sdk        *mcp.Server
	compressor *compress.Service
	extractor  *extract.Registry
	redactor   *redact.Redactor
	metrics    *Metrics
	logger     *zap.Logger
}

// New builds the MCP server and registers its tools.
func New(opts Options) (*Server, error) {
	if opts.Compressor == nil {
		return nil, fmt.Errorf("compress service must not be nil")
	}
	if opts.Extractor == nil {
		return nil, fmt.Errorf("extract registry must not be nil")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Version == "" {
		opts.Version = "0.0.0-dev"
	}

	s := &Server{
		sdk: mcp.NewServer(&mcp.Implementation{
			Name:    serverName,
			Version: opts.Version,
		}, nil),
		compressor: opts.Compressor,
		extractor:  opts.Extractor,
		redactor:   opts.Redactor,
		metrics:    NewMetrics(opts.Logger),
		logger:     opts.Logger,
	}
	s.registerTools()
	return s, nil
}

// Run serves MCP over stdio until ctx is canceled or the client hangs up.
// Stdout belongs to the protocol; callers must log to stderr.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("MCP server ready",
		zap.String("transport", "stdio"),
		zap.Strings("tools", []string{"compress_text", "compress_file", "estimate_tokens"}))

	if err := s.sdk.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("stdio transport: %w", err)
	}
	return nil
}
