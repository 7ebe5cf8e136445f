package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/pdfsqueeze/internal/compress"
	"github.com/fyrsmithlabs/pdfsqueeze/internal/extract"
)

var (
	// compress command flags
	csMaxTokens int
	csRatio     float64
	csAlgorithm string
	csRedact    bool
	csOutput    string
	csStats     bool
)

func init() {
	rootCmd.AddCommand(compressCmd)

	compressCmd.Flags().IntVar(&csMaxTokens, "max-tokens", 0, "token budget (default from config)")
	compressCmd.Flags().Float64Var(&csRatio, "ratio", 0, "target retention ratio in (0, 1] (default from config)")
	compressCmd.Flags().StringVar(&csAlgorithm, "algorithm", "", "compression algorithm: extractive, heuristic, or auto (default from config)")
	compressCmd.Flags().BoolVar(&csRedact, "redact", false, "redact secrets from the compressed output")
	compressCmd.Flags().StringVar(&csOutput, "output", "", "write the result to a file instead of stdout")
	compressCmd.Flags().BoolVar(&csStats, "stats", false, "print compression metrics to stderr")
}

var compressCmd = &cobra.Command{
	Use:   "compress [file|-]",
	Short: "Compress a PDF or text document to a token budget",
	Long: `Compress a PDF or text document to fit a token budget.

Files are routed by extension: PDFs go through text extraction first,
plain-text files are read as-is. With "-" or no argument, raw text is
read from stdin. The result goes to stdout (or --output); metrics go
to stderr so pipelines stay clean.

Examples:
  # Compress a PDF
  pdfsqueeze compress report.pdf

  # Compress from stdin
  cat notes.txt | pdfsqueeze compress -

  # Tight budget with metrics
  pdfsqueeze compress report.pdf --max-tokens 4000 --stats

  # Redact secrets and write to a file
  pdfsqueeze compress report.pdf --redact --output report.compressed.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompress,
}

func runCompress(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	compressor, extractor, err := initServices(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	text, source, err := readInput(ctx, extractor, args)
	if err != nil {
		return err
	}

	opts := compressor.Options()
	if csMaxTokens > 0 {
		opts.MaxTokens = csMaxTokens
	}
	if csRatio > 0 {
		opts.Ratio = csRatio
	}

	result, err := compressor.Compress(ctx, text, compress.Algorithm(csAlgorithm), opts)
	if err != nil {
		return err
	}

	// Redaction scrubs the compressed output; running it earlier would
	// leak marker tokens into the frequency table and skew selection.
	output := result.Text
	redactions := 0
	if csRedact || cfg.Compress.Redact {
		redactor, err := newRedactor(cfg)
		if err != nil {
			return err
		}
		res := redactor.Redact(output)
		output = res.Text
		redactions = res.Audit.Count()
	}

	if err := writeResult(output, csOutput); err != nil {
		return err
	}

	if csStats {
		fmt.Fprint(os.Stderr, renderStats(source, result, redactions))
	} else if redactions > 0 {
		fmt.Fprintf(os.Stderr, "[pdfsqueeze] Redacted %d secret(s)\n", redactions)
	}

	return nil
}

// readInput reads the document to compress. File arguments route through
// the extraction registry; "-" or no argument reads raw text from stdin.
func readInput(ctx context.Context, extractor *extract.Registry, args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return string(content), "stdin", nil
	}

	doc, err := extractor.Extract(ctx, args[0])
	if err != nil {
		return "", "", fmt.Errorf("extraction failed: %w", err)
	}
	return doc.Text, args[0], nil
}

// writeResult sends the compressed text to stdout or the output file.
func writeResult(text, outputPath string) error {
	if outputPath == "" {
		fmt.Print(text)
		return nil
	}
	if err := os.WriteFile(outputPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

var (
	statsHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("51"))

	statsLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45")).
			Width(12)

	statsValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true)
)

// renderStats formats the metrics block printed to stderr with --stats.
func renderStats(source string, res *compress.Result, redactions int) string {
	var b strings.Builder

	b.WriteString(statsHeaderStyle.Render("┃ Compression") + "\n")

	row := func(label, value string) {
		b.WriteString("  " + statsLabelStyle.Render(label) + " " + statsValueStyle.Render(value) + "\n")
	}

	row("Source", source)
	row("Algorithm", string(res.Algorithm))
	row("Original", fmt.Sprintf("%d tokens", res.OriginalTokens))
	row("Final", fmt.Sprintf("%d tokens", res.FinalTokens))
	row("Retention", fmt.Sprintf("%.1f%%", res.RetentionRounded()))
	if res.Compressed {
		row("Saved", fmt.Sprintf("%d tokens", res.OriginalTokens-res.FinalTokens))
	} else {
		row("Saved", "0 tokens (already within budget)")
	}
	if redactions > 0 {
		row("Redacted", fmt.Sprintf("%d secret(s)", redactions))
	}
	row("Duration", res.ProcessingTime.Round(time.Millisecond).String())

	return b.String()
}
