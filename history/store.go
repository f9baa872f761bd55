package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	// ErrInvalidRole is returned when a turn's role is neither user nor assistant.
	ErrInvalidRole = errors.New("turn role must be user or assistant")

	// ErrDocumentIDRequired is returned when the document id is empty.
	ErrDocumentIDRequired = errors.New("document id required")
)

// Turn is one question or answer in a document's transcript.
type Turn struct {
	ID         uuid.UUID `json:"id"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	DocumentID string    `json:"documentId"`
}

// TranscriptStore keeps an ordered per-document log of chat turns. It is
// deliberately independent of the pipelines: they produce and consume
// single turns and never manage the history themselves.
type TranscriptStore interface {
	// Get returns the document's turns in append order.
	Get(ctx context.Context, documentID string) ([]Turn, error)

	// Append adds one turn to the end of the document's transcript.
	Append(ctx context.Context, documentID string, turn Turn) error

	// Clear removes the document's whole transcript.
	Clear(ctx context.Context, documentID string) error
}
