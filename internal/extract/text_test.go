package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextExtractor_Extract(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("First line.\nSecond line.\n"), 0o644))

	e := NewTextExtractor(DefaultConfig())
	doc, err := e.Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "First line.\nSecond line.\n", doc.Text)
	assert.Equal(t, FormatText, doc.Format)
	assert.Equal(t, path, doc.SourcePath)
	assert.Equal(t, int64(25), doc.SizeBytes)
	assert.Nil(t, doc.Pages)
}

func TestTextExtractor_Extract_InvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mixed.txt")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 'h', 'i'}, 0o644))

	e := NewTextExtractor(DefaultConfig())
	doc, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "�hi", doc.Text)
}

func TestTextExtractor_Extract_Empty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	e := NewTextExtractor(DefaultConfig())
	_, err := e.Extract(context.Background(), path)
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestTextExtractor_Extract_FileTooLarge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(path, []byte("this file is larger than the cap"), 0o644))

	e := NewTextExtractor(Config{MaxFileBytes: 8})
	_, err := e.Extract(context.Background(), path)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestTextExtractor_SupportsType(t *testing.T) {
	e := NewTextExtractor(DefaultConfig())

	assert.True(t, e.SupportsType("notes.txt"))
	assert.True(t, e.SupportsType("README.md"))
	assert.True(t, e.SupportsType("server.log"))
	assert.True(t, e.SupportsType("NOTES.TXT"))
	assert.False(t, e.SupportsType("report.pdf"))
	assert.False(t, e.SupportsType("binary.bin"))
	assert.False(t, e.SupportsType("noext"))
}
