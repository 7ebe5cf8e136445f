package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fyrsmithlabs/pdfsqueeze/internal/compress"
	"github.com/fyrsmithlabs/pdfsqueeze/internal/extract"
)

// toolOptions carries the per-call knobs shared by the compression tools.
// Zero values fall back to the service configuration.
type toolOptions struct {
	MaxTokens int
	Ratio     float64
	Algorithm string
	Redact    bool
}

// compressText resolves options, runs the compression service, and
// optionally scrubs secrets from the compressed output. Returns the
// result and the number of secrets redacted.
func (s *Server) compressText(ctx context.Context, text string, opts toolOptions) (*compress.Result, int, error) {
	algorithm := compress.Algorithm(opts.Algorithm)
	if algorithm == "" {
		algorithm = s.compressor.DefaultAlgorithm()
	}

	serviceOpts := s.compressor.Options()
	if opts.MaxTokens > 0 {
		serviceOpts.MaxTokens = opts.MaxTokens
	}
	if opts.Ratio > 0 {
		serviceOpts.Ratio = opts.Ratio
	}

	if opts.Redact && s.redactor == nil {
		return nil, 0, fmt.Errorf("redaction is not enabled on this server")
	}

	res, err := s.compressor.Compress(ctx, text, algorithm, serviceOpts)
	if err != nil {
		return nil, 0, err
	}

	// Scrub after compression so marker tokens never reach the frequency
	// table and bias sentence selection.
	redactions := 0
	if opts.Redact {
		redacted := s.redactor.Redact(res.Text)
		res.Text = redacted.Text
		redactions = redacted.Audit.Count()
	}

	return res, redactions, nil
}

// compressFile extracts the document at path and compresses its text.
func (s *Server) compressFile(ctx context.Context, path string, opts toolOptions) (*extract.Document, *compress.Result, int, error) {
	doc, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("extraction failed: %w", err)
	}

	res, redactions, err := s.compressText(ctx, doc.Text, opts)
	if err != nil {
		return nil, nil, 0, err
	}

	return doc, res, redactions, nil
}

// registerTools registers every tool the server exposes.
func (s *Server) registerTools() {
	s.registerCompressionTools()
	s.registerEstimationTools()
}

// ===== COMPRESSION TOOLS =====

type compressTextInput struct {
	Text             string  `json:"text" jsonschema:"required,Text to compress"`
	MaxTokens        int     `json:"max_tokens,omitempty" jsonschema:"Token budget that triggers compression (default: server configuration)"`
	CompressionRatio float64 `json:"compression_ratio,omitempty" jsonschema:"Fraction of tokens to retain when over budget (0 to 1)"`
	Algorithm        string  `json:"algorithm,omitempty" jsonschema:"Compression algorithm: extractive heuristic or auto"`
	Redact           bool    `json:"redact,omitempty" jsonschema:"Redact detected secrets from the compressed output"`
}

type compressTextOutput struct {
	Text             string  `json:"text" jsonschema:"Compressed text"`
	Algorithm        string  `json:"algorithm" jsonschema:"Algorithm that produced the output"`
	OriginalTokens   int     `json:"original_tokens" jsonschema:"Token estimate of the input"`
	CompressedTokens int     `json:"compressed_tokens" jsonschema:"Token estimate of the output"`
	RetentionPercent float64 `json:"retention_percent" jsonschema:"Tokens retained as a percentage of the input"`
	Compressed       bool    `json:"compressed" jsonschema:"False when the input already fit the budget"`
	QualityScore     float64 `json:"quality_score,omitempty" jsonschema:"Output quality from 0 to 1 (higher is better)"`
	Redactions       int     `json:"redactions,omitempty" jsonschema:"Number of secrets redacted from the output"`
}

type compressFileInput struct {
	Path             string  `json:"path" jsonschema:"required,Path to a PDF or text file"`
	MaxTokens        int     `json:"max_tokens,omitempty" jsonschema:"Token budget that triggers compression (default: server configuration)"`
	CompressionRatio float64 `json:"compression_ratio,omitempty" jsonschema:"Fraction of tokens to retain when over budget (0 to 1)"`
	Algorithm        string  `json:"algorithm,omitempty" jsonschema:"Compression algorithm: extractive heuristic or auto"`
	Redact           bool    `json:"redact,omitempty" jsonschema:"Redact detected secrets from the compressed output"`
}

type compressFileOutput struct {
	SourcePath       string  `json:"source_path" jsonschema:"File the text was extracted from"`
	Format           string  `json:"format" jsonschema:"Detected source format (pdf or text)"`
	Pages            int     `json:"pages,omitempty" jsonschema:"Number of pages extracted (PDF only)"`
	Text             string  `json:"text" jsonschema:"Compressed text"`
	Algorithm        string  `json:"algorithm" jsonschema:"Algorithm that produced the output"`
	OriginalTokens   int     `json:"original_tokens" jsonschema:"Token estimate of the extracted text"`
	CompressedTokens int     `json:"compressed_tokens" jsonschema:"Token estimate of the output"`
	RetentionPercent float64 `json:"retention_percent" jsonschema:"Tokens retained as a percentage of the input"`
	Compressed       bool    `json:"compressed" jsonschema:"False when the extracted text already fit the budget"`
	QualityScore     float64 `json:"quality_score,omitempty" jsonschema:"Output quality from 0 to 1 (higher is better)"`
	Redactions       int     `json:"redactions,omitempty" jsonschema:"Number of secrets redacted from the output"`
}

func (s *Server) registerCompressionTools() {
	// compress_text
	mcp.AddTool(s.sdk, &mcp.Tool{
		Name:        "compress_text",
		Description: "Compress text to fit a token budget, keeping the highest-signal sentences",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args compressTextInput) (*mcp.CallToolResult, compressTextOutput, error) {
		start := time.Now()
		s.metrics.IncrementActive(ctx, "compress_text")
		var toolErr error
		defer func() {
			s.metrics.DecrementActive(ctx, "compress_text")
			s.metrics.RecordInvocation(ctx, "compress_text", time.Since(start), toolErr)
		}()

		if args.Text == "" {
			toolErr = fmt.Errorf("text is required")
			return nil, compressTextOutput{}, toolErr
		}

		res, redactions, err := s.compressText(ctx, args.Text, toolOptions{
			MaxTokens: args.MaxTokens,
			Ratio:     args.CompressionRatio,
			Algorithm: args.Algorithm,
			Redact:    args.Redact,
		})
		if err != nil {
			toolErr = err
			return nil, compressTextOutput{}, toolErr
		}

		output := compressTextOutput{
			Text:             res.Text,
			Algorithm:        string(res.Algorithm),
			OriginalTokens:   res.OriginalTokens,
			CompressedTokens: res.FinalTokens,
			RetentionPercent: res.RetentionRounded(),
			Compressed:       res.Compressed,
			QualityScore:     res.QualityScore,
			Redactions:       redactions,
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Compressed %d tokens to %d (%.1f%% retained)",
					output.OriginalTokens, output.CompressedTokens, output.RetentionPercent)},
			},
		}, output, nil
	})

	// compress_file
	mcp.AddTool(s.sdk, &mcp.Tool{
		Name:        "compress_file",
		Description: "Extract text from a PDF or text file and compress it to a token budget",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args compressFileInput) (*mcp.CallToolResult, compressFileOutput, error) {
		start := time.Now()
		s.metrics.IncrementActive(ctx, "compress_file")
		var toolErr error
		defer func() {
			s.metrics.DecrementActive(ctx, "compress_file")
			s.metrics.RecordInvocation(ctx, "compress_file", time.Since(start), toolErr)
		}()

		if args.Path == "" {
			toolErr = fmt.Errorf("path is required")
			return nil, compressFileOutput{}, toolErr
		}

		doc, res, redactions, err := s.compressFile(ctx, args.Path, toolOptions{
			MaxTokens: args.MaxTokens,
			Ratio:     args.CompressionRatio,
			Algorithm: args.Algorithm,
			Redact:    args.Redact,
		})
		if err != nil {
			toolErr = err
			return nil, compressFileOutput{}, toolErr
		}

		output := compressFileOutput{
			SourcePath:       doc.SourcePath,
			Format:           string(doc.Format),
			Pages:            len(doc.Pages),
			Text:             res.Text,
			Algorithm:        string(res.Algorithm),
			OriginalTokens:   res.OriginalTokens,
			CompressedTokens: res.FinalTokens,
			RetentionPercent: res.RetentionRounded(),
			Compressed:       res.Compressed,
			QualityScore:     res.QualityScore,
			Redactions:       redactions,
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Compressed %s: %d tokens to %d (%.1f%% retained)",
					doc.SourcePath, output.OriginalTokens, output.CompressedTokens, output.RetentionPercent)},
			},
		}, output, nil
	})
}

// ===== ESTIMATION TOOLS =====

type estimateTokensInput struct {
	Text string `json:"text" jsonschema:"required,Text to estimate"`
}

type estimateTokensOutput struct {
	Tokens int `json:"tokens" jsonschema:"Estimated token count"`
}

func (s *Server) registerEstimationTools() {
	// estimate_tokens
	mcp.AddTool(s.sdk, &mcp.Tool{
		Name:        "estimate_tokens",
		Description: "Estimate the token count of a text without compressing it",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args estimateTokensInput) (*mcp.CallToolResult, estimateTokensOutput, error) {
		start := time.Now()
		s.metrics.IncrementActive(ctx, "estimate_tokens")
		var toolErr error
		defer func() {
			s.metrics.DecrementActive(ctx, "estimate_tokens")
			s.metrics.RecordInvocation(ctx, "estimate_tokens", time.Since(start), toolErr)
		}()

		output := estimateTokensOutput{
			Tokens: compress.EstimateTokens(args.Text),
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("%d tokens", output.Tokens)},
			},
		}, output, nil
	})
}
