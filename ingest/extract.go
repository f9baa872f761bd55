package ingest

import (
	"bytes"
	"context"
	"fmt"

	"pdfchat/types"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/tmc/langchaingo/documentloaders"
)

// Extractor parses a binary payload into an ordered sequence of page texts.
type Extractor interface {
	Extract(ctx context.Context, payload []byte) ([]types.Page, error)
}

// PDFExtractor validates the payload with pdfcpu, then loads per-page text.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

func (e *PDFExtractor) Extract(ctx context.Context, payload []byte) ([]types.Page, error) {
	conf := api.LoadConfiguration()

	if err := api.Validate(bytes.NewReader(payload), conf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	loader := documentloaders.NewPDF(bytes.NewReader(payload), int64(len(payload)))
	docs, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	pages := make([]types.Page, len(docs))
	for i, doc := range docs {
		pages[i] = types.Page{
			Number: i + 1,
			Text:   doc.PageContent,
		}
	}
	return pages, nil
}
