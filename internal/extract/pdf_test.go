package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF assembles a minimal single-font PDF with one page per entry in
// pageTexts. Object offsets and stream lengths are computed exactly so
// standard xref parsing accepts the result.
func buildPDF(pageTexts ...string) []byte {
	var kids []string
	for i := range pageTexts {
		kids = append(kids, fmt.Sprintf("%d 0 R", 4+2*i))
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pageTexts)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}
	for i, text := range pageTexts {
		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			5+2*i))
		objects = append(objects, fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text))
	}

	var buf strings.Builder
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects)+1)
	for i, obj := range objects {
		num := i + 1
		offsets[num] = buf.Len()
		if strings.HasPrefix(obj, "BT ") {
			fmt.Fprintf(&buf, "%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", num, len(obj), obj)
		} else {
			fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, obj)
		}
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for num := 1; num <= len(objects); num++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[num])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefOffset)

	return []byte(buf.String())
}

func writePDF(t *testing.T, dir string, name string, pageTexts ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buildPDF(pageTexts...), 0o644))
	return path
}

func TestPDFExtractor_Extract(t *testing.T) {
	dir := t.TempDir()
	path := writePDF(t, dir, "report.pdf", "Hello World", "Second page here")

	e := NewPDFExtractor(DefaultConfig())
	doc, err := e.Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Contains(t, doc.Text, "Hello World")
	assert.Contains(t, doc.Text, "Second page here")
	assert.Equal(t, FormatPDF, doc.Format)
	assert.Equal(t, path, doc.SourcePath)
	assert.Positive(t, doc.SizeBytes)

	require.Len(t, doc.Pages, 2)
	assert.Equal(t, 1, doc.Pages[0].Number)
	assert.Equal(t, 2, doc.Pages[1].Number)
	assert.Positive(t, doc.Pages[0].Chars)
}

func TestPDFExtractor_Extract_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.pdf")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	e := NewPDFExtractor(DefaultConfig())
	_, err := e.Extract(context.Background(), path)
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestPDFExtractor_Extract_MissingFile(t *testing.T) {
	e := NewPDFExtractor(DefaultConfig())
	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	assert.Error(t, err)
}

func TestPDFExtractor_Extract_NotAPDF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "junk.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf at all"), 0o644))

	e := NewPDFExtractor(DefaultConfig())
	_, err := e.Extract(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open pdf")
}

func TestPDFExtractor_Extract_FileTooLarge(t *testing.T) {
	dir := t.TempDir()
	path := writePDF(t, dir, "report.pdf", "Hello World")

	e := NewPDFExtractor(Config{MaxFileBytes: 10})
	_, err := e.Extract(context.Background(), path)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestPDFExtractor_Extract_TooManyPages(t *testing.T) {
	dir := t.TempDir()
	path := writePDF(t, dir, "report.pdf", "one", "two", "three")

	e := NewPDFExtractor(Config{MaxPages: 2})
	_, err := e.Extract(context.Background(), path)
	assert.ErrorIs(t, err, ErrTooManyPages)
}

func TestPDFExtractor_Extract_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	path := writePDF(t, dir, "report.pdf", "Hello World")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewPDFExtractor(DefaultConfig())
	_, err := e.Extract(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPDFExtractor_SupportsType(t *testing.T) {
	e := NewPDFExtractor(DefaultConfig())
	assert.True(t, e.SupportsType("report.pdf"))
	assert.True(t, e.SupportsType("REPORT.PDF"))
	assert.False(t, e.SupportsType("notes.txt"))
	assert.False(t, e.SupportsType("archive"))
}
