package compress

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
	"unicode/utf8"
)

// Algorithm identifies a compression strategy
type Algorithm string

const (
	// AlgorithmExtractive selects the highest-scoring sentences and discards the rest
	AlgorithmExtractive Algorithm = "extractive"
	// AlgorithmHeuristic deduplicates and abbreviates text without scoring
	AlgorithmHeuristic Algorithm = "heuristic"
	// AlgorithmAuto picks extractive or heuristic based on content shape
	AlgorithmAuto Algorithm = "auto"
)

const (
	// DefaultMaxTokens is the budget ceiling applied when none is given.
	DefaultMaxTokens = 100000

	// DefaultRatio is the fraction of tokens targeted when text exceeds the budget.
	DefaultRatio = 0.5

	// charsPerToken is the estimation divisor: 1 token ≈ 4 characters.
	charsPerToken = 4
)

var (
	// ErrInvalidRatio indicates a ratio outside (0, 1].
	ErrInvalidRatio = errors.New("ratio must be in (0, 1]")

	// ErrInvalidMaxTokens indicates a non-positive token budget.
	ErrInvalidMaxTokens = errors.New("max tokens must be positive")

	// ErrContentTooLarge indicates input beyond the compressor's supported size.
	ErrContentTooLarge = errors.New("content exceeds maximum supported length")

	// ErrUnknownAlgorithm indicates an algorithm the service cannot route.
	ErrUnknownAlgorithm = errors.New("unknown compression algorithm")
)

// Options control a single compression call.
type Options struct {
	// MaxTokens is the hard ceiling that gates whether compression runs.
	MaxTokens int

	// Ratio is the target fraction of tokens to retain when the input
	// exceeds MaxTokens. Must be in (0, 1].
	Ratio float64
}

// Validate reports the first invalid option, if any.
func (o Options) Validate() error {
	if o.MaxTokens <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidMaxTokens, o.MaxTokens)
	}
	if o.Ratio <= 0 || o.Ratio > 1 {
		return fmt.Errorf("%w: got %g", ErrInvalidRatio, o.Ratio)
	}
	return nil
}

// DefaultOptions returns the standard budget and ratio.
func DefaultOptions() Options {
	return Options{
		MaxTokens: DefaultMaxTokens,
		Ratio:     DefaultRatio,
	}
}

// Compressor defines the interface for text compression
type Compressor interface {
	// Compress reduces text to fit the token budget in opts
	Compress(ctx context.Context, text string, opts Options) (*Result, error)

	// Algorithm returns the strategy this compressor implements
	Algorithm() Algorithm

	// GetCapabilities returns the capabilities of this compressor
	GetCapabilities(ctx context.Context) Capabilities
}

// Result represents the outcome of a compression operation
type Result struct {
	// Text is the (possibly compressed) output
	Text string

	// Algorithm that produced the output
	Algorithm Algorithm

	// OriginalTokens is the token estimate of the normalized input
	OriginalTokens int

	// FinalTokens is the token estimate of the output
	FinalTokens int

	// Compressed is false when the input already fit the budget
	Compressed bool

	// ProcessingTime is the wall time spent compressing
	ProcessingTime time.Duration

	// QualityScore rates the output (0.0 to 1.0, higher is better)
	QualityScore float64

	// Metadata carries algorithm-specific details (sentence counts,
	// deduplicated lines, truncation)
	Metadata map[string]string
}

// RetentionPercent returns final tokens as a percentage of the original
// estimate. Empty input retains everything by definition.
func (r *Result) RetentionPercent() float64 {
	if r.OriginalTokens == 0 {
		return 100.0
	}
	return float64(r.FinalTokens) / float64(r.OriginalTokens) * 100.0
}

// RetentionRounded returns RetentionPercent rounded to one decimal place,
// the precision reported to callers.
func (r *Result) RetentionRounded() float64 {
	return math.Round(r.RetentionPercent()*10) / 10
}

// Capabilities describes what a compressor can do
type Capabilities struct {
	// Supported algorithms
	SupportedAlgorithms []Algorithm

	// Maximum content length supported, in bytes
	MaxContentLength int

	// Whether it honors a target retention ratio
	SupportsTargetRatio bool

	// Quality score range
	QualityScoreRange struct {
		Min float64
		Max float64
	}
}

// Config holds service-level compression defaults
type Config struct {
	// Default algorithm when a request does not name one
	DefaultAlgorithm Algorithm

	// MaxTokens is the default budget ceiling
	MaxTokens int

	// Ratio is the default retention target
	Ratio float64

	// QualityThreshold marks results whose composite quality score falls
	// below it (0 disables the check). Results are annotated, never
	// rejected: the pipeline is single-pass.
	QualityThreshold float64
}

// EstimateTokens estimates the token count of text. The approximation is
// 1 token per 4 characters; it is never exact and callers must tolerate
// the error. Characters are counted as runes, so multi-byte input is not
// penalized for its encoding.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return utf8.RuneCountInString(text) / charsPerToken
}
