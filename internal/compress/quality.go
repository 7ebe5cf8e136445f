package compress

import (
	"math"
	"strings"
	"unicode/utf8"
)

// QualityMetrics holds inputs for evaluating compression quality
type QualityMetrics struct {
	OriginalTokens int
	FinalTokens    int
	TargetRatio    float64
}

// NewQualityMetrics creates a new quality metrics calculator
func NewQualityMetrics(originalTokens, finalTokens int, targetRatio float64) *QualityMetrics {
	return &QualityMetrics{
		OriginalTokens: originalTokens,
		FinalTokens:    finalTokens,
		TargetRatio:    targetRatio,
	}
}

// BudgetScore measures how close the output landed to the nominal target.
// Hitting or undershooting the target scores 1.0; overshoot is penalized
// proportionally. The single-pass pipeline never corrects overshoot, so
// this score is where the divergence becomes visible.
func (m *QualityMetrics) BudgetScore() float64 {
	if m.OriginalTokens == 0 {
		return 1.0
	}

	target := float64(m.OriginalTokens) * m.TargetRatio
	if target <= 0 {
		return 0.0
	}

	if float64(m.FinalTokens) <= target {
		return 1.0
	}
	return target / float64(m.FinalTokens)
}

// KeywordRetentionRate calculates the fraction of significant words from
// the original that survive in the compressed text. Stop words and tokens
// of length <= 2 are not counted as significant.
func (m *QualityMetrics) KeywordRetentionRate(original, compressed string) float64 {
	originalKeywords := extractKeywords(original)
	if len(originalKeywords) == 0 {
		return 0.0
	}
	compressedKeywords := extractKeywords(compressed)

	retained := 0
	for keyword := range originalKeywords {
		if _, ok := compressedKeywords[keyword]; ok {
			retained++
		}
	}

	return float64(retained) / float64(len(originalKeywords))
}

// InformationRetentionScore rewards high keyword retention with an
// exponential curve.
func (m *QualityMetrics) InformationRetentionScore(original, compressed string) float64 {
	return math.Pow(m.KeywordRetentionRate(original, compressed), 0.8)
}

// SemanticSimilarityScore measures word overlap between original and
// compressed text as Jaccard similarity (intersection over union).
func (m *QualityMetrics) SemanticSimilarityScore(original, compressed string) float64 {
	originalWords := wordSet(original)
	compressedWords := wordSet(compressed)

	if len(originalWords) == 0 || len(compressedWords) == 0 {
		return 0.0
	}

	intersection := 0
	union := make(map[string]struct{}, len(originalWords)+len(compressedWords))

	for word := range originalWords {
		union[word] = struct{}{}
		if _, ok := compressedWords[word]; ok {
			intersection++
		}
	}
	for word := range compressedWords {
		union[word] = struct{}{}
	}

	return float64(intersection) / float64(len(union))
}

// ReadabilityScore rates sentence structure of the compressed text. Whole
// sentences selected verbatim keep their punctuation, so low scores signal
// heavy truncation or fragment-only output.
func (m *QualityMetrics) ReadabilityScore(text string) float64 {
	sentences := splitSentences(text)
	words := tokenize(text)

	if len(words) == 0 {
		return 0.0
	}

	sentenceScore := 0.3
	if len(sentences) > 0 {
		avg := float64(len(words)) / float64(len(sentences))
		switch {
		case avg >= 10 && avg <= 20:
			sentenceScore = 1.0
		case avg >= 5 && avg < 10:
			sentenceScore = 0.8
		case avg >= 3:
			sentenceScore = 0.6
		default:
			sentenceScore = 0.4
		}
	}

	punctuationScore := 0.0
	if strings.ContainsAny(text, ".!?") {
		punctuationScore = 0.2
	}

	return math.Min(sentenceScore+punctuationScore, 1.0)
}

// CompositeScore calculates the weighted average of all quality metrics
func (m *QualityMetrics) CompositeScore(original, compressed string) float64 {
	const (
		budgetWeight      = 0.25
		retentionWeight   = 0.30
		similarityWeight  = 0.30
		readabilityWeight = 0.15
	)

	return m.BudgetScore()*budgetWeight +
		m.InformationRetentionScore(original, compressed)*retentionWeight +
		m.SemanticSimilarityScore(original, compressed)*similarityWeight +
		m.ReadabilityScore(compressed)*readabilityWeight
}

// QualityGate enforces a minimum composite score
type QualityGate struct {
	MinComposite float64
}

// GateResult contains the outcome of a quality gate evaluation
type GateResult struct {
	Pass           bool
	CompositeScore float64
}

// Admit reports whether an already-computed composite score clears the
// gate. A zero threshold always passes.
func (g *QualityGate) Admit(score float64) bool {
	return g.MinComposite == 0 || score >= g.MinComposite
}

// Evaluate computes the composite score for a compression and checks it
// against the gate threshold.
func (g *QualityGate) Evaluate(metrics *QualityMetrics, original, compressed string) *GateResult {
	score := metrics.CompositeScore(original, compressed)
	return &GateResult{
		Pass:           g.Admit(score),
		CompositeScore: score,
	}
}

// extractKeywords returns the significant words of text: lowercased word
// tokens that are not stop words and are longer than 2 characters.
func extractKeywords(text string) map[string]struct{} {
	keywords := make(map[string]struct{})
	for _, word := range tokenize(text) {
		if _, stop := stopWords[word]; stop {
			continue
		}
		if utf8.RuneCountInString(word) <= 2 {
			continue
		}
		keywords[word] = struct{}{}
	}
	return keywords
}

// wordSet returns the distinct lowercased word tokens of text.
func wordSet(text string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, word := range tokenize(text) {
		words[word] = struct{}{}
	}
	return words
}
