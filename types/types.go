package types

import (
	"time"

	"github.com/google/uuid"
)

// Page is one page of text extracted from an uploaded PDF.
type Page struct {
	Number int
	Text   string
}

// Chunk is a contiguous overlapping span of document text, the unit of
// embedding and retrieval. Chunks are insert-only: once indexed they are
// never mutated, only matched.
type Chunk struct {
	ID        uuid.UUID
	DocID     uuid.UUID
	Position  int
	Page      int
	Content   string
	Embedding []float32
	Distance  float64
}

// Document describes one uploaded PDF. Created once at ingestion,
// immutable thereafter.
type Document struct {
	ID         uuid.UUID
	Filename   string
	SizeBytes  int64
	PageCount  int
	Summary    string
	UploadedAt time.Time
}
