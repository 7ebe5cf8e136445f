// Package extract provides plain-text extraction from source documents
// before compression.
//
// The package supports:
//   - PDF documents via github.com/ledongthuc/pdf (pure Go, no CGO)
//   - Plain-text files (.txt, .md and friends) as a passthrough
//
// # Architecture
//
// The main components are:
//   - Extractor: the extraction contract shared by all formats
//   - PDFExtractor: page-by-page PDF text extraction with a page cap
//   - TextExtractor: UTF-8 passthrough for already-textual sources
//   - Registry: picks the extractor for a path by file extension
//
// # Failure Model
//
// Extraction failures are hard errors. A document that cannot be opened or
// exceeds the configured limits never reaches the compression pipeline, and
// nothing here retries. Individual unreadable PDF pages are the one
// exception: they are skipped so that one corrupt page does not discard an
// otherwise readable document.
//
// # Usage
//
//	registry := extract.NewRegistry(extract.DefaultConfig())
//	doc, err := registry.Extract(ctx, "report.pdf")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(doc.Text)
package extract
