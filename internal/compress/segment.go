package compress

import (
	"strings"
	"unicode"
)

// splitSentences splits text into an ordered sequence of sentences. A split
// point sits immediately after a terminal punctuation mark ('.', '!', '?')
// that is followed by whitespace. Fragments are trimmed and empties dropped,
// so indices into the returned slice are the sentences' original positions.
// Text without terminal punctuation comes back as a single sentence.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)

		if isTerminal(r) && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
