package compress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"hello", "world", "123"}, tokenize("Hello, world! 123"))
	assert.Equal(t, []string{"snake_case", "stays"}, tokenize("snake_case stays"))
	assert.Nil(t, tokenize("!!! ---"))
	assert.Nil(t, tokenize(""))
}

func TestBuildFrequencyTable(t *testing.T) {
	t.Run("normalizes by max count", func(t *testing.T) {
		table := buildFrequencyTable([]string{
			"cat cat dog",
			"cat bird",
		})

		assert.InDelta(t, 1.0, table["cat"], 1e-9)
		assert.InDelta(t, 1.0/3.0, table["dog"], 1e-9)
		assert.InDelta(t, 1.0/3.0, table["bird"], 1e-9)
	})

	t.Run("excludes stop words", func(t *testing.T) {
		table := buildFrequencyTable([]string{"the cat and the dog"})

		assert.NotContains(t, table, "the")
		assert.NotContains(t, table, "and")
		assert.Contains(t, table, "cat")
		assert.Contains(t, table, "dog")
	})

	t.Run("excludes short tokens", func(t *testing.T) {
		table := buildFrequencyTable([]string{"an ox ran far"})

		assert.NotContains(t, table, "ox")
		assert.Contains(t, table, "ran")
		assert.Contains(t, table, "far")
	})

	t.Run("lowercases tokens", func(t *testing.T) {
		table := buildFrequencyTable([]string{"Cat CAT cat"})

		assert.Len(t, table, 1)
		assert.InDelta(t, 1.0, table["cat"], 1e-9)
	})

	t.Run("empty corpus yields empty table", func(t *testing.T) {
		assert.Empty(t, buildFrequencyTable(nil))
		assert.Empty(t, buildFrequencyTable([]string{""}))
	})

	t.Run("all tokens filtered yields empty table", func(t *testing.T) {
		// Stop words and short tokens only; the divisor guard must not panic.
		assert.Empty(t, buildFrequencyTable([]string{"the a an is it"}))
	})
}
