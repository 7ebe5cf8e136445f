package compress

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// fingerprintLen is the fixed prefix length used as the line deduplication
// key. Two distinct lines sharing their first 100 characters (lowercased)
// collapse into one; that false positive is a known approximation of the
// dedup heuristic, not a bug.
const fingerprintLen = 100

// abbreviation is one ordered replacement rule. Rules are applied in slice
// order; several patterns overlap textually (" with " is a substring of
// " without " once rewritten), so the order is observable and fixed.
type abbreviation struct {
	from string
	to   string
}

// abbreviations is the fixed substitution table for the heuristic path.
var abbreviations = []abbreviation{
	{" and ", " & "},
	{" with ", " w/ "},
	{" without ", " w/o "},
	{" through ", " thru "},
	{" between ", " btwn "},
	{" approximately ", " ~"},
	{" percent ", "%"},
	{" number ", "#"},
	{" versus ", " vs "},
}

// HeuristicCompressor implements the non-extractive path: page-number
// removal, line deduplication by prefix fingerprint, ordered abbreviation
// substitution, and hard truncation when the text still exceeds the budget.
// It preserves no sentence structure and is suited to repetitive or tabular
// text where frequency scoring adds little.
type HeuristicCompressor struct {
	config Config
}

// NewHeuristicCompressor creates a new heuristic compressor
func NewHeuristicCompressor(config Config) *HeuristicCompressor {
	return &HeuristicCompressor{
		config: config,
	}
}

var _ Compressor = (*HeuristicCompressor)(nil)

// Algorithm returns AlgorithmHeuristic.
func (c *HeuristicCompressor) Algorithm() Algorithm {
	return AlgorithmHeuristic
}

// Compress cleans text line-wise and, when the result still exceeds the
// budget, deduplicates, abbreviates, and finally truncates to the budget's
// character equivalent. Under-budget text is returned after cleaning only.
func (c *HeuristicCompressor) Compress(ctx context.Context, text string, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	cleaned := NormalizeLines(text)
	originalTokens := EstimateTokens(cleaned)

	if originalTokens <= opts.MaxTokens {
		return &Result{
			Text:           cleaned,
			Algorithm:      AlgorithmHeuristic,
			OriginalTokens: originalTokens,
			FinalTokens:    originalTokens,
			Compressed:     false,
			ProcessingTime: time.Since(start),
			QualityScore:   1.0,
		}, nil
	}

	deduped, removed := dedupeLines(cleaned)
	abbreviated := applyAbbreviations(deduped)

	truncated := false
	out := abbreviated
	if EstimateTokens(out) > opts.MaxTokens {
		out = truncate(out, opts.MaxTokens*charsPerToken)
		truncated = true
	}

	finalTokens := EstimateTokens(out)
	metrics := NewQualityMetrics(originalTokens, finalTokens, opts.Ratio)

	return &Result{
		Text:           out,
		Algorithm:      AlgorithmHeuristic,
		OriginalTokens: originalTokens,
		FinalTokens:    finalTokens,
		Compressed:     true,
		ProcessingTime: time.Since(start),
		QualityScore:   metrics.CompositeScore(cleaned, out),
		Metadata: map[string]string{
			"lines_removed": strconv.Itoa(removed),
			"truncated":     strconv.FormatBool(truncated),
		},
	}, nil
}

// GetCapabilities returns the capabilities of this compressor
func (c *HeuristicCompressor) GetCapabilities(ctx context.Context) Capabilities {
	return Capabilities{
		SupportedAlgorithms: []Algorithm{AlgorithmHeuristic},
		MaxContentLength:    64 << 20,
		SupportsTargetRatio: false,
		QualityScoreRange: struct {
			Min float64
			Max float64
		}{
			Min: 0.0,
			Max: 1.0,
		},
	}
}

// dedupeLines drops lines whose prefix fingerprint was already seen,
// keeping first occurrences in order. It returns the joined survivors and
// the number of lines removed.
func dedupeLines(text string) (string, int) {
	lines := strings.Split(text, "\n")
	seen := make(map[string]struct{}, len(lines))
	unique := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key := fingerprint(line)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, line)
	}

	return strings.Join(unique, "\n"), len(lines) - len(unique)
}

// fingerprint returns the lowercased first fingerprintLen characters of a
// line, the key used for deduplication.
func fingerprint(line string) string {
	lower := strings.ToLower(line)
	if utf8.RuneCountInString(lower) <= fingerprintLen {
		return lower
	}
	runes := []rune(lower)
	return string(runes[:fingerprintLen])
}

// applyAbbreviations runs the replacement table in its fixed order.
func applyAbbreviations(text string) string {
	for _, abbr := range abbreviations {
		text = strings.ReplaceAll(text, abbr.from, abbr.to)
	}
	return text
}

// truncate cuts text to at most maxChars characters, the last-resort size
// control when cleaning and substitution were not enough.
func truncate(text string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars])
}
