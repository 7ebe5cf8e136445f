package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Compile-time interface check.
var _ Extractor = (*TextExtractor)(nil)

// textExtensions are the file extensions treated as plain text.
var textExtensions = map[string]struct{}{
	".txt":  {},
	".text": {},
	".md":   {},
	".log":  {},
}

// TextExtractor passes plain-text files through unchanged, replacing any
// invalid UTF-8 sequences with the replacement character.
type TextExtractor struct {
	config Config
}

// NewTextExtractor creates a plain-text extractor.
func NewTextExtractor(config Config) *TextExtractor {
	return &TextExtractor{config: config.withDefaults()}
}

// SupportsType reports whether the path has a known text extension.
func (e *TextExtractor) SupportsType(path string) bool {
	_, ok := textExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Format returns FormatText.
func (e *TextExtractor) Format() Format { return FormatText }

// Extract reads the file at path as UTF-8 text.
func (e *TextExtractor) Extract(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if info.Size() > e.config.MaxFileBytes {
		return nil, fmt.Errorf("%w: %d bytes, maximum %d", ErrFileTooLarge, info.Size(), e.config.MaxFileBytes)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(content) == 0 {
		return nil, ErrEmptyDocument
	}

	return &Document{
		Text:       strings.ToValidUTF8(string(content), "�"),
		SourcePath: path,
		Format:     FormatText,
		SizeBytes:  info.Size(),
	}, nil
}
