package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ForPath(t *testing.T) {
	r := NewRegistry(DefaultConfig())

	pdfExtractor, err := r.ForPath("report.pdf")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, pdfExtractor.Format())

	textExtractor, err := r.ForPath("notes.md")
	require.NoError(t, err)
	assert.Equal(t, FormatText, textExtractor.Format())

	_, err = r.ForPath("image.png")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRegistry_Extract(t *testing.T) {
	dir := t.TempDir()

	textPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("hello from a text file"), 0o644))

	pdfPath := writePDF(t, dir, "report.pdf", "hello from a pdf")

	r := NewRegistry(DefaultConfig())

	doc, err := r.Extract(context.Background(), textPath)
	require.NoError(t, err)
	assert.Equal(t, FormatText, doc.Format)

	doc, err = r.Extract(context.Background(), pdfPath)
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, doc.Format)
	assert.Contains(t, doc.Text, "hello from a pdf")

	_, err = r.Extract(context.Background(), filepath.Join(dir, "image.png"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRegistry_SupportsType(t *testing.T) {
	r := NewRegistry(DefaultConfig())
	assert.True(t, r.SupportsType("a.pdf"))
	assert.True(t, r.SupportsType("a.txt"))
	assert.False(t, r.SupportsType("a.exe"))
}
