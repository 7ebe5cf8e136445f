package compress

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const (
	// edgeBonus boosts sentences near the start or end of the document.
	edgeBonus = 1.2
	// edgeWindow is how many leading/trailing sentences receive edgeBonus.
	edgeWindow = 3
	// digitBonus boosts sentences containing at least one digit.
	digitBonus = 1.1
)

// ExtractiveCompressor implements extractive summarization: sentences are
// scored by normalized word frequency and the top fraction is kept in
// original order.
type ExtractiveCompressor struct {
	config Config
}

// NewExtractiveCompressor creates a new extractive compressor
func NewExtractiveCompressor(config Config) *ExtractiveCompressor {
	return &ExtractiveCompressor{
		config: config,
	}
}

var _ Compressor = (*ExtractiveCompressor)(nil)

// Algorithm returns AlgorithmExtractive.
func (c *ExtractiveCompressor) Algorithm() Algorithm {
	return AlgorithmExtractive
}

// Compress normalizes text and, when its token estimate exceeds the budget,
// keeps the top-scoring fraction of sentences. Text at or under the budget
// is returned unchanged after normalization. The retention ratio is applied
// once against the sentence count; the output size is not re-verified, so
// the final estimate can drift from the nominal target when sentence
// lengths vary.
func (c *ExtractiveCompressor) Compress(ctx context.Context, text string, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	normalized := Normalize(text)
	originalTokens := EstimateTokens(normalized)

	if originalTokens <= opts.MaxTokens {
		return &Result{
			Text:           normalized,
			Algorithm:      AlgorithmExtractive,
			OriginalTokens: originalTokens,
			FinalTokens:    originalTokens,
			Compressed:     false,
			ProcessingTime: time.Since(start),
			QualityScore:   1.0,
		}, nil
	}

	targetTokens := min(opts.MaxTokens, int(float64(originalTokens)*opts.Ratio))
	ratio := float64(targetTokens) / float64(originalTokens)

	summary, kept, total := c.summarize(normalized, ratio)

	metrics := NewQualityMetrics(originalTokens, EstimateTokens(summary), ratio)

	return &Result{
		Text:           summary,
		Algorithm:      AlgorithmExtractive,
		OriginalTokens: originalTokens,
		FinalTokens:    EstimateTokens(summary),
		Compressed:     true,
		ProcessingTime: time.Since(start),
		QualityScore:   metrics.CompositeScore(normalized, summary),
		Metadata: map[string]string{
			"sentences_total": strconv.Itoa(total),
			"sentences_kept":  strconv.Itoa(kept),
		},
	}, nil
}

// GetCapabilities returns the capabilities of this compressor
func (c *ExtractiveCompressor) GetCapabilities(ctx context.Context) Capabilities {
	return Capabilities{
		SupportedAlgorithms: []Algorithm{AlgorithmExtractive},
		MaxContentLength:    64 << 20,
		SupportsTargetRatio: true,
		QualityScoreRange: struct {
			Min float64
			Max float64
		}{
			Min: 0.0,
			Max: 1.0,
		},
	}
}

// summarize runs segmentation, scoring and selection with the given
// retention ratio. It returns the reconstructed text plus kept/total
// sentence counts. Empty input passes through unchanged.
func (c *ExtractiveCompressor) summarize(text string, ratio float64) (summary string, kept, total int) {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return text, 0, 0
	}

	scores := scoreSentences(sentences)
	selected := selectSentences(sentences, scores, ratio)

	return strings.Join(selected, " "), len(selected), len(sentences)
}

// scoreSentences assigns an importance score to each sentence: the sum of
// normalized frequencies over every token in the sentence (tokens absent
// from the table contribute 0), multiplied by 1.2 for the first and last
// three sentences and by 1.1 when the sentence contains a digit. On short
// documents the positional windows overlap and every sentence gets the
// edge bonus; that is expected.
func scoreSentences(sentences []string) []float64 {
	table := buildFrequencyTable(sentences)

	scores := make([]float64, len(sentences))
	for i, sentence := range sentences {
		score := 0.0
		for _, word := range tokenize(sentence) {
			score += table[word]
		}

		if i < edgeWindow || i >= len(sentences)-edgeWindow {
			score *= edgeBonus
		}

		if containsDigit(sentence) {
			score *= digitBonus
		}

		scores[i] = score
	}

	return scores
}

// selectSentences keeps the top max(1, floor(n×ratio)) sentences by score
// and rebuilds them in original order. Ties rank the earlier sentence
// first, so selection is deterministic even when scores collide.
func selectSentences(sentences []string, scores []float64, ratio float64) []string {
	keep := int(float64(len(sentences)) * ratio)
	if keep < 1 {
		keep = 1
	}
	if keep > len(sentences) {
		keep = len(sentences)
	}

	ranked := make([]int, len(sentences))
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return scores[ranked[a]] > scores[ranked[b]]
	})

	top := ranked[:keep]
	sort.Ints(top)

	selected := make([]string, 0, keep)
	for _, idx := range top {
		selected = append(selected, sentences[idx])
	}
	return selected
}

func containsDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
