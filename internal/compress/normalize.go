package compress

import (
	"regexp"
	"strings"
)

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	pageNumberLine = regexp.MustCompile(`\n\s*\d+\s*\n`)
)

// Normalize collapses whitespace runs to single spaces, shortens runs of
// five or more identical characters to two, and trims the result. Decorative
// separators ("=====", "-----") survive as two-character stubs so sentence
// structure around them is preserved.
func Normalize(text string) string {
	text = whitespaceRuns.ReplaceAllString(text, " ")
	text = collapseCharRuns(text)
	return strings.TrimSpace(text)
}

// NormalizeLines cleans text while preserving line structure: it drops
// bare page-number lines, collapses repeated characters, and trims each
// line. Used by the heuristic path, which deduplicates by line.
func NormalizeLines(text string) string {
	text = pageNumberLine.ReplaceAllString(text, "\n")
	text = collapseCharRuns(text)

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(whitespaceRuns.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		cleaned = append(cleaned, line)
	}
	return strings.Join(cleaned, "\n")
}

// collapseCharRuns shortens any run of 5+ identical characters to exactly 2.
// Go's regexp engine has no backreferences, so the scan is manual.
func collapseCharRuns(text string) string {
	const (
		threshold = 5
		keep      = 2
	)

	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text))

	i := 0
	for i < len(runes) {
		j := i
		for j < len(runes) && runes[j] == runes[i] {
			j++
		}
		run := j - i
		if run >= threshold {
			run = keep
		}
		for k := 0; k < run; k++ {
			b.WriteRune(runes[i])
		}
		i = j
	}
	return b.String()
}
