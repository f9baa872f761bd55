package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pdfchat/model"
	"pdfchat/store"
	"pdfchat/types"

	"github.com/google/uuid"
)

const summaryPrompt = `The text below is the opening fragment of a larger document, produced by a
splitter that overlaps neighboring fragments. Write one coherent paragraph of
roughly 100 words summarizing it. Remove repetition caused by fragment
overlap, keep the document's own terminology precise, and do not add anything
that is not in the text.

Text:
%s

Summary:`

// Result is what a successful ingestion reports back to the uploader.
type Result struct {
	Summary    string
	DocumentID uuid.UUID
	PageCount  int
}

// Pipeline runs upload -> extract -> split -> summarize -> embed -> index.
// It is stateless: every call is an independent single-shot request.
type Pipeline struct {
	store     store.VectorStorer
	embedder  model.Embedder
	llm       model.Completer
	extractor Extractor
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithExtractor replaces the PDF extractor.
func WithExtractor(e Extractor) Option {
	return func(p *Pipeline) {
		if e != nil {
			p.extractor = e
		}
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func NewPipeline(storer store.VectorStorer, embedder model.Embedder, llm model.Completer, opts ...Option) (*Pipeline, error) {
	if storer == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if llm == nil {
		return nil, ErrCompleterRequired
	}

	p := &Pipeline{
		store:     storer,
		embedder:  embedder,
		llm:       llm,
		extractor: NewPDFExtractor(),
		logger:    slog.Default().With("component", "ingest"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Ingest processes one uploaded document end to end. Any step error aborts
// the whole ingestion; an index-write error may leave the document partially
// indexed, and the caller must treat the upload as failed either way.
func (p *Pipeline) Ingest(ctx context.Context, filename string, payload []byte) (*Result, error) {
	// The id exists before any processing so failed attempts can be
	// correlated by log line.
	docID := uuid.New()
	p.logger.Info("ingestion started", "doc_id", docID, "filename", filename, "bytes", len(payload))

	pages, err := p.extractor.Extract(ctx, payload)
	if err != nil {
		return nil, err
	}

	chunks, err := Split(pages, docID)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrEmptyDocument
	}

	// Only the first chunk feeds the summary.
	summary, err := p.llm.Complete(ctx, fmt.Sprintf(summaryPrompt, chunks[0].Content))
	if err != nil {
		return nil, fmt.Errorf("summary synthesis: %w", err)
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}
	vectors, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("chunk embedding: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("chunk embedding: got %d vectors for %d chunks", len(vectors), len(chunks))
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	if err := p.store.SaveChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("index write: %w", err)
	}

	doc := types.Document{
		ID:         docID,
		Filename:   filename,
		SizeBytes:  int64(len(payload)),
		PageCount:  len(pages),
		Summary:    summary,
		UploadedAt: time.Now(),
	}
	if err := p.store.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("index write: %w", err)
	}

	p.logger.Info("ingestion finished", "doc_id", docID, "pages", len(pages), "chunks", len(chunks))

	return &Result{
		Summary:    summary,
		DocumentID: docID,
		PageCount:  len(pages),
	}, nil
}
