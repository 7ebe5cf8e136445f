package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Compile-time interface check.
var _ Extractor = (*PDFExtractor)(nil)

// PDFExtractor extracts text from PDF documents page by page.
type PDFExtractor struct {
	config Config
}

// NewPDFExtractor creates a PDF extractor.
func NewPDFExtractor(config Config) *PDFExtractor {
	return &PDFExtractor{config: config.withDefaults()}
}

// SupportsType reports whether the path looks like a PDF.
func (e *PDFExtractor) SupportsType(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// Format returns FormatPDF.
func (e *PDFExtractor) Format() Format { return FormatPDF }

// Extract reads the PDF at path and returns its plain text. Unreadable or
// empty pages are skipped; pages are joined with blank lines.
func (e *PDFExtractor) Extract(ctx context.Context, path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat pdf: %w", err)
	}
	if info.Size() > e.config.MaxFileBytes {
		return nil, fmt.Errorf("%w: %d bytes, maximum %d", ErrFileTooLarge, info.Size(), e.config.MaxFileBytes)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	doc, err := e.extractBytes(ctx, content)
	if err != nil {
		return nil, err
	}
	doc.SourcePath = path
	doc.SizeBytes = info.Size()
	return doc, nil
}

func (e *PDFExtractor) extractBytes(ctx context.Context, content []byte) (*Document, error) {
	if len(content) == 0 {
		return nil, ErrEmptyDocument
	}

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	if r.NumPage() > e.config.MaxPages {
		return nil, fmt.Errorf("%w: %d pages, maximum %d", ErrTooManyPages, r.NumPage(), e.config.MaxPages)
	}

	var text strings.Builder
	var pages []PageInfo

	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := extractPageText(page)
		if err != nil {
			// One corrupt page should not discard the document.
			continue
		}
		if pageText == "" {
			continue
		}

		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		text.WriteString(pageText)

		pages = append(pages, PageInfo{
			Number: i,
			Chars:  utf8.RuneCountInString(pageText),
		})
	}

	return &Document{
		Text:   strings.TrimSpace(text.String()),
		Format: FormatPDF,
		Pages:  pages,
	}, nil
}

// extractPageText extracts readable text from a single PDF page.
func extractPageText(page pdf.Page) (string, error) {
	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
