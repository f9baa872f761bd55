package ingest

import (
	"strings"

	"pdfchat/types"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// ChunkSize is the target chunk length in characters.
	ChunkSize = 1000
	// ChunkOverlap is how much neighboring chunks repeat each other. The
	// redundancy boosts retrieval recall; the summary prompt filters the
	// resulting duplication.
	ChunkOverlap = 200
)

// Split partitions per-page text into overlapping chunks and stamps every
// chunk with the owning document id. Splitting is deterministic for
// identical input. Pages with no usable text contribute no chunks.
func Split(pages []types.Page, docID uuid.UUID) ([]types.Chunk, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(ChunkSize),
		textsplitter.WithChunkOverlap(ChunkOverlap),
	)

	var chunks []types.Chunk
	pos := 0
	for _, page := range pages {
		parts, err := splitter.SplitText(page.Text)
		if err != nil {
			return nil, err
		}
		for _, content := range parts {
			if strings.TrimSpace(content) == "" {
				continue
			}
			chunks = append(chunks, types.Chunk{
				ID:       uuid.New(),
				DocID:    docID,
				Position: pos,
				Page:     page.Number,
				Content:  content,
			})
			pos++
		}
	}
	return chunks, nil
}
