package extract

import (
	"context"
	"fmt"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/fyrsmithlabs/pdfsqueeze/internal/extract"

// Registry resolves file paths to extractors.
type Registry struct {
	extractors []Extractor
	tracer     trace.Tracer
}

// NewRegistry creates a registry with the PDF and plain-text extractors.
func NewRegistry(config Config) *Registry {
	return &Registry{
		extractors: []Extractor{
			NewPDFExtractor(config),
			NewTextExtractor(config),
		},
		tracer: otel.Tracer(instrumentationName),
	}
}

// ForPath returns the extractor handling the path, or ErrUnsupportedFormat.
func (r *Registry) ForPath(path string) (Extractor, error) {
	for _, e := range r.extractors {
		if e.SupportsType(path) {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// Extract resolves the extractor for path and runs it.
func (r *Registry) Extract(ctx context.Context, path string) (*Document, error) {
	ctx, span := r.tracer.Start(ctx, "extract.Extract",
		trace.WithAttributes(attribute.String("extension", filepath.Ext(path))),
	)
	defer span.End()

	extractor, err := r.ForPath(path)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	doc, err := extractor.Extract(ctx, path)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("format", string(doc.Format)),
		attribute.Int("pages", len(doc.Pages)),
		attribute.Int("text_bytes", len(doc.Text)),
	)
	return doc, nil
}

// SupportsType reports whether any registered extractor handles the path.
func (r *Registry) SupportsType(path string) bool {
	_, err := r.ForPath(path)
	return err == nil
}
