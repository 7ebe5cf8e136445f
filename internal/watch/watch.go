// Package watch turns a directory into a compression hopper: PDFs dropped
// into it are extracted, compressed, and written back as .compressed.txt
// siblings.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pdfsqueeze/internal/compress"
	"github.com/fyrsmithlabs/pdfsqueeze/internal/extract"
)

var (
	// ErrWatcherFailed indicates the filesystem watcher failed to initialize
	ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

	// ErrNotDirectory indicates the watch target is not a directory
	ErrNotDirectory = errors.New("watch path is not a directory")
)

const (
	// DefaultDebounce is how long a file must stay quiet before processing.
	DefaultDebounce = 500 * time.Millisecond

	// DefaultPollInterval is the fallback rescan interval for filesystems
	// where fsnotify misses events.
	DefaultPollInterval = 30 * time.Second

	// OutputSuffix replaces the source extension on compressed siblings.
	OutputSuffix = ".compressed.txt"
)

// Result describes one processed document.
type Result struct {
	// SourcePath is the PDF that was picked up
	SourcePath string

	// OutputPath is the compressed sibling, empty when processing failed
	OutputPath string

	// OriginalTokens is the token estimate of the extracted text
	OriginalTokens int

	// CompressedTokens is the token estimate of the written output
	CompressedTokens int

	// RetentionPercent is tokens retained as a percentage of the input
	RetentionPercent float64

	// Compressed is false when the text already fit the budget
	Compressed bool

	// Err is non-nil when extraction, compression, or the write failed
	Err error

	// Timestamp is when processing started
	Timestamp time.Time
}

// Config configures the directory watcher.
type Config struct {
	// Debounce is how long a file must stay quiet before processing.
	// Zero uses DefaultDebounce.
	Debounce time.Duration

	// PollInterval is the fallback rescan interval. Zero uses
	// DefaultPollInterval; negative disables polling.
	PollInterval time.Duration

	// MaxTokens overrides the service token budget when positive.
	MaxTokens int

	// Ratio overrides the service retention ratio when positive.
	Ratio float64

	// Algorithm overrides the service default algorithm when set.
	Algorithm string
}

// Watcher watches a directory and compresses PDFs dropped into it.
type Watcher struct {
	dir          string
	watcher      *fsnotify.Watcher
	compressor   *compress.Service
	extractor    *extract.Registry
	logger       *zap.Logger
	debounce     time.Duration
	pollInterval time.Duration
	algorithm    compress.Algorithm
	opts         compress.Options

	results chan Result
	stop    chan struct{}

	mu      sync.Mutex
	pending map[string]*time.Timer
	seen    map[string]time.Time
}

// NewWatcher creates a watcher for dir.
//
// Returns an error if dir does not exist, is not a directory, or the
// filesystem watcher cannot be created.
func NewWatcher(dir string, compressor *compress.Service, extractor *extract.Registry, logger *zap.Logger, cfg Config) (*Watcher, error) {
	if compressor == nil {
		return nil, fmt.Errorf("compress service is required")
	}
	if extractor == nil {
		return nil, fmt.Errorf("extract registry is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	pollInterval := cfg.PollInterval
	if pollInterval == 0 {
		pollInterval = DefaultPollInterval
	}

	opts := compressor.Options()
	if cfg.MaxTokens > 0 {
		opts.MaxTokens = cfg.MaxTokens
	}
	if cfg.Ratio > 0 {
		opts.Ratio = cfg.Ratio
	}

	return &Watcher{
		dir:          dir,
		watcher:      fsw,
		compressor:   compressor,
		extractor:    extractor,
		logger:       logger,
		debounce:     debounce,
		pollInterval: pollInterval,
		algorithm:    compress.Algorithm(cfg.Algorithm),
		opts:         opts,
		results:      make(chan Result, 10),
		stop:         make(chan struct{}),
		pending:      make(map[string]*time.Timer),
		seen:         make(map[string]time.Time),
	}, nil
}

// Start begins watching for dropped PDFs.
//
// Files already present are recorded but not processed: watch mode reacts
// to new drops, and the poll fallback must not replay the backlog. Call
// Stop() to clean up resources.
func (w *Watcher) Start(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("reading watch directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if !isCandidate(path) {
			continue
		}
		if info, err := entry.Info(); err == nil {
			w.seen[path] = info.ModTime()
		}
	}

	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching directory: %w", err)
	}

	go w.run(ctx)

	return nil
}

// Stop stops the watcher and cleans up resources.
func (w *Watcher) Stop() {
	select {
	case <-w.stop:
		// Already stopped
		return
	default:
		close(w.stop)
		_ = w.watcher.Close() // Best-effort cleanup, ignore error
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}

// Results returns the channel for receiving processing results.
func (w *Watcher) Results() <-chan Result {
	return w.results
}

// OutputPath returns the compressed sibling path for a source document.
func OutputPath(source string) string {
	ext := filepath.Ext(source)
	return strings.TrimSuffix(source, ext) + OutputSuffix
}

// isCandidate reports whether the path is a PDF drop worth processing.
func isCandidate(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// run processes filesystem events until stopped.
func (w *Watcher) run(ctx context.Context) {
	var pollC <-chan time.Time
	if w.pollInterval > 0 {
		poll := time.NewTicker(w.pollInterval)
		defer poll.Stop()
		pollC = poll.C
	}

	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 && isCandidate(event.Name) {
				w.schedule(ctx, event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		case <-pollC:
			w.scan(ctx)
		}
	}
}

// schedule arms (or re-arms) the debounce timer for a path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.debounce)
		return
	}

	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.process(ctx, path)
	})
}

// scan picks up candidates the filesystem watcher missed.
func (w *Watcher) scan(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.logger.Warn("rescan failed", zap.Error(err))
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if !isCandidate(path) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		w.mu.Lock()
		seenAt, seen := w.seen[path]
		_, pending := w.pending[path]
		w.mu.Unlock()

		if pending || (seen && !info.ModTime().After(seenAt)) {
			continue
		}
		w.schedule(ctx, path)
	}
}

// process compresses one settled file and emits the result.
func (w *Watcher) process(ctx context.Context, path string) {
	w.mu.Lock()
	if timer, ok := w.pending[path]; ok {
		timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	select {
	case <-w.stop:
		return
	case <-ctx.Done():
		return
	default:
	}

	result := w.compressOne(ctx, path)

	// Record the mod time so the poll fallback skips this drop
	if info, err := os.Stat(path); err == nil {
		w.mu.Lock()
		w.seen[path] = info.ModTime()
		w.mu.Unlock()
	}

	if result.Err != nil {
		w.logger.Warn("processing failed",
			zap.String("path", path),
			zap.Error(result.Err),
		)
	} else {
		w.logger.Info("compressed document",
			zap.String("path", path),
			zap.String("output", result.OutputPath),
			zap.Int("original_tokens", result.OriginalTokens),
			zap.Int("compressed_tokens", result.CompressedTokens),
		)
	}

	// Send result (non-blocking)
	select {
	case w.results <- result:
	default:
		// Channel full, skip
	}
}

// compressOne extracts, compresses, and writes the sibling for one file.
func (w *Watcher) compressOne(ctx context.Context, path string) Result {
	now := time.Now()

	doc, err := w.extractor.Extract(ctx, path)
	if err != nil {
		return Result{SourcePath: path, Err: fmt.Errorf("extraction failed: %w", err), Timestamp: now}
	}

	res, err := w.compressor.Compress(ctx, doc.Text, w.algorithm, w.opts)
	if err != nil {
		return Result{SourcePath: path, Err: err, Timestamp: now}
	}

	outputPath := OutputPath(path)
	if err := os.WriteFile(outputPath, []byte(res.Text), 0o644); err != nil {
		return Result{SourcePath: path, Err: fmt.Errorf("writing output: %w", err), Timestamp: now}
	}

	return Result{
		SourcePath:       path,
		OutputPath:       outputPath,
		OriginalTokens:   res.OriginalTokens,
		CompressedTokens: res.FinalTokens,
		RetentionPercent: res.RetentionRounded(),
		Compressed:       res.Compressed,
		Timestamp:        now,
	}
}
