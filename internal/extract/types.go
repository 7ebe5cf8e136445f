package extract

import (
	"context"
	"errors"
)

// Format identifies the source document format.
type Format string

const (
	// FormatPDF is a PDF document.
	FormatPDF Format = "pdf"
	// FormatText is a plain-text document.
	FormatText Format = "text"
)

var (
	// ErrEmptyDocument indicates the source contained no content.
	ErrEmptyDocument = errors.New("document is empty")

	// ErrTooManyPages indicates the PDF exceeds the configured page cap.
	ErrTooManyPages = errors.New("document exceeds page limit")

	// ErrFileTooLarge indicates the source file exceeds the configured size cap.
	ErrFileTooLarge = errors.New("file exceeds size limit")

	// ErrUnsupportedFormat indicates no extractor accepts the path.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// PageInfo describes one extracted PDF page.
type PageInfo struct {
	Number int `json:"number"`
	Chars  int `json:"chars"`
}

// Document is the extraction result handed to the compression pipeline.
type Document struct {
	// Text is the extracted plain text, pages joined by blank lines.
	Text string `json:"text"`

	// SourcePath is the file the text came from.
	SourcePath string `json:"source_path"`

	// Format is the detected source format.
	Format Format `json:"format"`

	// Pages holds per-page character counts. Nil for non-paged formats.
	Pages []PageInfo `json:"pages,omitempty"`

	// SizeBytes is the size of the source file on disk.
	SizeBytes int64 `json:"size_bytes"`
}

// Extractor extracts plain text from a source document.
type Extractor interface {
	// Extract reads the file at path and returns its plain text.
	Extract(ctx context.Context, path string) (*Document, error)

	// SupportsType reports whether this extractor handles the path.
	SupportsType(path string) bool

	// Format returns the format this extractor produces.
	Format() Format
}

// Config holds extraction limits.
type Config struct {
	// MaxPages caps the number of pages read from a PDF. Zero means
	// the default.
	MaxPages int `json:"max_pages"`

	// MaxFileBytes caps the size of a source file. Zero means the default.
	MaxFileBytes int64 `json:"max_file_bytes"`
}

const (
	defaultMaxPages     = 1000
	defaultMaxFileBytes = 100 << 20
)

// DefaultConfig returns the default extraction limits.
func DefaultConfig() Config {
	return Config{
		MaxPages:     defaultMaxPages,
		MaxFileBytes: defaultMaxFileBytes,
	}
}

func (c Config) withDefaults() Config {
	if c.MaxPages == 0 {
		c.MaxPages = defaultMaxPages
	}
	if c.MaxFileBytes == 0 {
		c.MaxFileBytes = defaultMaxFileBytes
	}
	return c
}
