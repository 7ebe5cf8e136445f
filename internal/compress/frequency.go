package compress

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// stopWords are common function words excluded from frequency counting.
// The set is process-wide immutable configuration; nothing mutates it at
// runtime.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "from": {}, "is": {}, "was": {}, "are": {},
	"were": {}, "be": {}, "been": {}, "being": {}, "have": {}, "has": {},
	"had": {},
}

// wordPattern matches word tokens: maximal runs of letters, digits, and
// underscores.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// tokenize lowercases text and returns its word tokens in order.
func tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// buildFrequencyTable counts word tokens across all sentences, excluding
// stop words and tokens of length <= 2, then normalizes every count by the
// maximum so values fall in (0, 1]. When no tokens survive filtering the
// divisor is 1 and the table is empty; callers treat missing words as 0.
func buildFrequencyTable(sentences []string) map[string]float64 {
	counts := make(map[string]int)
	for _, sentence := range sentences {
		for _, word := range tokenize(sentence) {
			if _, stop := stopWords[word]; stop {
				continue
			}
			if utf8.RuneCountInString(word) <= 2 {
				continue
			}
			counts[word]++
		}
	}

	maxCount := 1
	for _, n := range counts {
		if n > maxCount {
			maxCount = n
		}
	}

	table := make(map[string]float64, len(counts))
	for word, n := range counts {
		table[word] = float64(n) / float64(maxCount)
	}
	return table
}
