package agent

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"pdfchat/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	err     error
	queries []string
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	f.queries = append(f.queries, text)
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2}, nil
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	vecs := make([][]float32, len(texts))
	for i := range vecs {
		vecs[i] = []float32{0.1, 0.2}
	}
	return vecs, nil
}

type fakeCompleter struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeStore struct {
	chunks      []types.Chunk
	searchErr   error
	searchDocID uuid.UUID
	searchLimit int
}

func (f *fakeStore) SaveDocument(ctx context.Context, doc types.Document) error { return nil }

func (f *fakeStore) GetDocumentByID(ctx context.Context, docID uuid.UUID) (*types.Document, error) {
	return nil, sql.ErrNoRows
}

func (f *fakeStore) SaveChunks(ctx context.Context, chunks []types.Chunk) error { return nil }

func (f *fakeStore) SearchByDocument(ctx context.Context, docID uuid.UUID, queryVec []float32, limit int) ([]types.Chunk, error) {
	f.searchDocID = docID
	f.searchLimit = limit
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var hits []types.Chunk
	for _, c := range f.chunks {
		if c.DocID == docID {
			hits = append(hits, c)
		}
	}
	return hits, nil
}

func TestNew(t *testing.T) {
	st := &fakeStore{}
	emb := &fakeEmbedder{}
	llm := &fakeCompleter{}

	t.Run("valid configuration", func(t *testing.T) {
		a, err := New(st, emb, llm)
		require.NoError(t, err)
		assert.NotNil(t, a)
	})

	t.Run("nil store", func(t *testing.T) {
		_, err := New(nil, emb, llm)
		assert.Equal(t, ErrStoreRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := New(st, nil, llm)
		assert.Equal(t, ErrEmbedderRequired, err)
	})

	t.Run("nil completer", func(t *testing.T) {
		_, err := New(st, emb, nil)
		assert.Equal(t, ErrCompleterRequired, err)
	})
}

func TestAnswer(t *testing.T) {
	ctx := context.Background()
	docID := uuid.New()

	indexed := []types.Chunk{
		{ID: uuid.New(), DocID: docID, Position: 0, Content: "Article 1. All workers have the right to rest."},
		{ID: uuid.New(), DocID: docID, Position: 1, Content: "Article 2. Rest periods are paid."},
	}

	t.Run("grounded answer", func(t *testing.T) {
		st := &fakeStore{chunks: indexed}
		llm := &fakeCompleter{response: "Workers have the right to rest (Article 1)."}
		a, err := New(st, &fakeEmbedder{}, llm)
		require.NoError(t, err)

		answer := a.Answer(ctx, "What right do workers have?", docID.String())

		assert.Equal(t, OutcomeGrounded, answer.Outcome)
		assert.Equal(t, llm.response, answer.Text)
		assert.NoError(t, answer.Err)

		// retrieval was scoped to the requested document, top-4
		assert.Equal(t, docID, st.searchDocID)
		assert.Equal(t, 4, st.searchLimit)

		// the prompt carries the retrieved context and the question
		require.Len(t, llm.prompts, 1)
		assert.Contains(t, llm.prompts[0], "right to rest")
		assert.Contains(t, llm.prompts[0], "Rest periods are paid")
		assert.Contains(t, llm.prompts[0], "What right do workers have?")
	})

	t.Run("unknown document returns sentinel without model call", func(t *testing.T) {
		st := &fakeStore{chunks: indexed}
		llm := &fakeCompleter{response: "must not be used"}
		a, err := New(st, &fakeEmbedder{}, llm)
		require.NoError(t, err)

		answer := a.Answer(ctx, "What right do workers have?", uuid.NewString())

		assert.Equal(t, OutcomeNoContext, answer.Outcome)
		assert.Equal(t, SentinelAnswer, answer.Text)
		assert.Empty(t, llm.prompts)
	})

	t.Run("retrieval never crosses documents", func(t *testing.T) {
		other := uuid.New()
		st := &fakeStore{chunks: indexed}
		llm := &fakeCompleter{response: "must not be used"}
		a, err := New(st, &fakeEmbedder{}, llm)
		require.NoError(t, err)

		answer := a.Answer(ctx, "What right do workers have?", other.String())

		assert.Equal(t, other, st.searchDocID)
		assert.Equal(t, SentinelAnswer, answer.Text)
	})

	t.Run("malformed identifier behaves like an unknown one", func(t *testing.T) {
		emb := &fakeEmbedder{}
		a, err := New(&fakeStore{chunks: indexed}, emb, &fakeCompleter{})
		require.NoError(t, err)

		answer := a.Answer(ctx, "anything", "not-a-uuid")

		assert.Equal(t, OutcomeNoContext, answer.Outcome)
		assert.Equal(t, SentinelAnswer, answer.Text)
		assert.Empty(t, emb.queries)
	})

	t.Run("embedding failure degrades softly", func(t *testing.T) {
		cause := errors.New("embedding service down")
		a, err := New(&fakeStore{chunks: indexed}, &fakeEmbedder{err: cause}, &fakeCompleter{})
		require.NoError(t, err)

		answer := a.Answer(ctx, "What right do workers have?", docID.String())

		assert.Equal(t, OutcomeFailed, answer.Outcome)
		assert.Equal(t, FailureAnswer, answer.Text)
		assert.ErrorIs(t, answer.Err, cause)
	})

	t.Run("retrieval failure degrades softly", func(t *testing.T) {
		cause := errors.New("index unavailable")
		a, err := New(&fakeStore{searchErr: cause}, &fakeEmbedder{}, &fakeCompleter{})
		require.NoError(t, err)

		answer := a.Answer(ctx, "What right do workers have?", docID.String())

		assert.Equal(t, OutcomeFailed, answer.Outcome)
		assert.Equal(t, FailureAnswer, answer.Text)
		assert.ErrorIs(t, answer.Err, cause)
	})

	t.Run("model failure degrades softly", func(t *testing.T) {
		cause := errors.New("completion timed out")
		a, err := New(&fakeStore{chunks: indexed}, &fakeEmbedder{}, &fakeCompleter{err: cause})
		require.NoError(t, err)

		answer := a.Answer(ctx, "What right do workers have?", docID.String())

		assert.Equal(t, OutcomeFailed, answer.Outcome)
		assert.Equal(t, FailureAnswer, answer.Text)
		assert.ErrorIs(t, answer.Err, cause)
	})
}
