package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pdfsqueeze/internal/watch"
)

var (
	// watch command flags
	wtDebounce     time.Duration
	wtPollInterval time.Duration
	wtMaxTokens    int
	wtRatio        float64
	wtAlgorithm    string
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&wtDebounce, "debounce", 0, "settle time before a dropped file is processed (default from config)")
	watchCmd.Flags().DurationVar(&wtPollInterval, "poll-interval", 0, "rescan interval for drops missed by the OS watcher (default from config)")
	watchCmd.Flags().IntVar(&wtMaxTokens, "max-tokens", 0, "token budget (default from config)")
	watchCmd.Flags().Float64Var(&wtRatio, "ratio", 0, "target retention ratio in (0, 1] (default from config)")
	watchCmd.Flags().StringVar(&wtAlgorithm, "algorithm", "", "compression algorithm (default from config)")
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watch a directory and compress PDFs dropped into it",
	Long: `Watch a directory for new PDF files and compress each one to a token
budget. Results are written next to the source as <name>.compressed.txt.

Files already in the directory when the watcher starts are left alone;
only new drops and rewrites are processed.

Examples:
  # Watch the inbox folder
  pdfsqueeze watch ~/Documents/inbox

  # Faster settle, tighter budget
  pdfsqueeze watch ./drops --debounce 200ms --max-tokens 4000`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	compressor, extractor, err := initServices(cfg)
	if err != nil {
		return err
	}

	wcfg := watch.Config{
		Debounce:     cfg.Watch.Debounce.Duration(),
		PollInterval: cfg.Watch.PollInterval.Duration(),
		MaxTokens:    wtMaxTokens,
		Ratio:        wtRatio,
		Algorithm:    wtAlgorithm,
	}
	if wtDebounce > 0 {
		wcfg.Debounce = wtDebounce
	}
	if wtPollInterval > 0 {
		wcfg.PollInterval = wtPollInterval
	}

	w, err := watch.NewWatcher(args[0], compressor, extractor, zap.NewNop(), wcfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Fprintf(os.Stderr, "Watching %s for PDF drops (Ctrl+C to stop)\n", args[0])

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "\nWatcher stopped")
			return nil
		case res := <-w.Results():
			printWatchResult(res)
		}
	}
}

// printWatchResult prints one drop outcome. Failures go to stderr and do
// not stop the watcher.
func printWatchResult(res watch.Result) {
	name := filepath.Base(res.SourcePath)
	if res.Err != nil {
		fmt.Fprintf(os.Stderr, "✗ %s: %v\n", name, res.Err)
		return
	}
	fmt.Printf("✓ %s → %s (%d → %d tokens, %.1f%% retained)\n",
		name,
		filepath.Base(res.OutputPath),
		res.OriginalTokens,
		res.CompressedTokens,
		res.RetentionPercent,
	)
}
