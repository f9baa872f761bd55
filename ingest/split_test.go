package ingest

import (
	"fmt"
	"strings"
	"testing"

	"pdfchat/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberedWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("word%04d", i)
	}
	return strings.Join(words, " ")
}

// longest suffix of a that is a prefix of b
func suffixPrefixOverlap(a, b string) int {
	max := len(a)
	if len(b) < max {
		max = len(b)
	}
	for k := max; k > 0; k-- {
		if strings.HasSuffix(a, b[:k]) {
			return k
		}
	}
	return 0
}

func TestSplit(t *testing.T) {
	docID := uuid.New()

	t.Run("deterministic for identical input", func(t *testing.T) {
		pages := []types.Page{{Number: 1, Text: numberedWords(600)}}

		first, err := Split(pages, docID)
		require.NoError(t, err)
		second, err := Split(pages, docID)
		require.NoError(t, err)

		require.Equal(t, len(first), len(second))
		for i := range first {
			assert.Equal(t, first[i].Content, second[i].Content)
			assert.Equal(t, first[i].Position, second[i].Position)
		}
	})

	t.Run("respects chunk size and overlap bounds", func(t *testing.T) {
		pages := []types.Page{{Number: 1, Text: numberedWords(600)}}

		chunks, err := Split(pages, docID)
		require.NoError(t, err)
		require.Greater(t, len(chunks), 1, "600 numbered words must not fit one chunk")

		for i, chunk := range chunks {
			assert.LessOrEqual(t, len(chunk.Content), ChunkSize)
			if i == 0 {
				continue
			}
			overlap := suffixPrefixOverlap(chunks[i-1].Content, chunk.Content)
			assert.Greater(t, overlap, 0, "consecutive chunks must share text")
			assert.LessOrEqual(t, overlap, ChunkOverlap)
		}
	})

	t.Run("stamps document id and ordering metadata", func(t *testing.T) {
		pages := []types.Page{
			{Number: 1, Text: numberedWords(300)},
			{Number: 2, Text: "closing remarks on the final page"},
		}

		chunks, err := Split(pages, docID)
		require.NoError(t, err)
		require.NotEmpty(t, chunks)

		lastPage := 0
		for i, chunk := range chunks {
			assert.Equal(t, docID, chunk.DocID)
			assert.Equal(t, i, chunk.Position)
			assert.GreaterOrEqual(t, chunk.Page, lastPage)
			lastPage = chunk.Page
		}
		assert.Equal(t, 2, chunks[len(chunks)-1].Page)
	})

	t.Run("no extractable text yields zero chunks", func(t *testing.T) {
		pages := []types.Page{
			{Number: 1, Text: ""},
			{Number: 2, Text: "   \n\t  "},
		}

		chunks, err := Split(pages, docID)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("short page becomes a single chunk", func(t *testing.T) {
		pages := []types.Page{{Number: 1, Text: "Article 1. All workers have the right to rest."}}

		chunks, err := Split(pages, docID)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Contains(t, chunks[0].Content, "right to rest")
	})
}
