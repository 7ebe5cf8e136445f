package compress

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicCompressor_NoOpBelowBudget(t *testing.T) {
	compressor := NewHeuristicCompressor(Config{})

	input := "line one\nline two\nline three"
	result, err := compressor.Compress(context.Background(), input, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, input, result.Text)
	assert.False(t, result.Compressed)
	assert.Equal(t, result.OriginalTokens, result.FinalTokens)
}

func TestHeuristicCompressor_EmptyInput(t *testing.T) {
	compressor := NewHeuristicCompressor(Config{})

	result, err := compressor.Compress(context.Background(), "", DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "", result.Text)
	assert.Equal(t, 0, result.OriginalTokens)
}

func TestHeuristicCompressor_DeduplicatesRepeatedLines(t *testing.T) {
	compressor := NewHeuristicCompressor(Config{})

	header := "Acme Corp Quarterly Report - Confidential"
	var b strings.Builder
	for i := 0; i < 50; i++ {
		b.WriteString(header)
		b.WriteString("\nActual content line number " + strings.Repeat("x", i) + "\n")
	}

	opts := Options{MaxTokens: 50, Ratio: 0.5}
	result, err := compressor.Compress(context.Background(), b.String(), opts)
	require.NoError(t, err)

	assert.True(t, result.Compressed)
	assert.Equal(t, 1, strings.Count(result.Text, header),
		"repeated header lines should collapse to one")
	assert.NotEqual(t, "0", result.Metadata["lines_removed"])
}

func TestHeuristicCompressor_TruncatesAsLastResort(t *testing.T) {
	compressor := NewHeuristicCompressor(Config{})

	// Unique lines defeat deduplication, forcing truncation.
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString(strings.Repeat("abc ", 10))
		b.WriteString(string(rune('a' + i%26)))
		b.WriteString("\n")
	}

	opts := Options{MaxTokens: 100, Ratio: 0.5}
	result, err := compressor.Compress(context.Background(), b.String(), opts)
	require.NoError(t, err)

	assert.True(t, result.Compressed)
	assert.Equal(t, "true", result.Metadata["truncated"])
	assert.LessOrEqual(t, result.FinalTokens, opts.MaxTokens)
}

func TestDedupeLines(t *testing.T) {
	t.Run("keeps first occurrence", func(t *testing.T) {
		out, removed := dedupeLines("alpha\nbeta\nalpha\ngamma\nbeta")
		assert.Equal(t, "alpha\nbeta\ngamma", out)
		assert.Equal(t, 2, removed)
	})

	t.Run("fingerprint is case insensitive", func(t *testing.T) {
		out, removed := dedupeLines("Alpha Beta\nALPHA BETA")
		assert.Equal(t, "Alpha Beta", out)
		assert.Equal(t, 1, removed)
	})

	t.Run("long shared prefix collapses distinct lines", func(t *testing.T) {
		prefix := strings.Repeat("p", fingerprintLen)
		out, removed := dedupeLines(prefix + " tail one\n" + prefix + " tail two")

		// Known approximation: the fingerprint only sees the first 100
		// characters, so these distinct lines count as duplicates.
		assert.Equal(t, prefix+" tail one", out)
		assert.Equal(t, 1, removed)
	})

	t.Run("short distinct lines survive", func(t *testing.T) {
		out, removed := dedupeLines("one\ntwo\nthree")
		assert.Equal(t, "one\ntwo\nthree", out)
		assert.Zero(t, removed)
	})
}

func TestApplyAbbreviations(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "common substitutions",
			input: "profit and loss with interest without penalty",
			want:  "profit & loss w/ interest w/o penalty",
		},
		{
			name:  "numeric phrasing",
			input: "grew approximately 5 percent since last year",
			want:  "grew ~5%since last year",
		},
		{
			name:  "versus",
			input: "margin versus cost",
			want:  "margin vs cost",
		},
		{
			name:  "requires surrounding spaces",
			input: "sandwich android command",
			want:  "sandwich android command",
		},
		{
			name:  "through and between",
			input: "routed through hub between nodes",
			want:  "routed thru hub btwn nodes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, applyAbbreviations(tt.input))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abcdef", 3))
	assert.Equal(t, "abcdef", truncate("abcdef", 10))
	assert.Equal(t, "", truncate("abcdef", 0))
	assert.Equal(t, "héllo", truncate("héllo world", 5), "truncation counts characters, not bytes")
}
