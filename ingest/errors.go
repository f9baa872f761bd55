package ingest

import "errors"

var (
	// ErrExtraction is returned when the payload is not a well-formed PDF.
	ErrExtraction = errors.New("document extraction failed")

	// ErrEmptyDocument is returned when a well-formed document yields no
	// extractable text, and therefore zero chunks to index.
	ErrEmptyDocument = errors.New("document contains no extractable text")

	// ErrStoreRequired is returned when a vector store is not provided.
	ErrStoreRequired = errors.New("vector store required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrCompleterRequired is returned when a completion client is not provided.
	ErrCompleterRequired = errors.New("completion client required")
)
