package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pdfchat/model"
	"pdfchat/store"

	"github.com/google/uuid"
)

const (
	// SentinelAnswer is returned when retrieval finds nothing for the
	// document, skipping the model call entirely.
	SentinelAnswer = "I don't know the answer to that question"

	// FailureAnswer is the soft reply every internal failure degrades to.
	FailureAnswer = "An error occurred while processing your question"

	topK = 4
)

// Outcome says how an answer was produced. The HTTP surface renders all
// outcomes as 200 responses, but tests and logs need the distinction
// between "no context found" and "an upstream call broke".
type Outcome int

const (
	OutcomeGrounded Outcome = iota
	OutcomeNoContext
	OutcomeFailed
)

// Answer is the result of one question. Err carries the cause when
// Outcome is OutcomeFailed and is never surfaced to the caller.
type Answer struct {
	Text    string
	Outcome Outcome
	Err     error
}

// Agent runs the query pipeline: embed the question, retrieve the
// document's nearest chunks, prompt the model once.
type Agent struct {
	store    store.VectorStorer
	embedder model.Embedder
	llm      model.Completer
	logger   *slog.Logger
}

func New(storer store.VectorStorer, embedder model.Embedder, llm model.Completer) (*Agent, error) {
	if storer == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if llm == nil {
		return nil, ErrCompleterRequired
	}
	return &Agent{
		store:    storer,
		embedder: embedder,
		llm:      llm,
		logger:   slog.Default().With("component", "agent"),
	}, nil
}

// Answer produces a grounded answer for a validated question. It never
// returns an error: failures are folded into the Answer per the soft-fail
// contract of the question endpoint.
func (a *Agent) Answer(ctx context.Context, question, documentID string) Answer {
	docID, err := uuid.Parse(documentID)
	if err != nil {
		// An unparseable identifier can never match indexed chunks, so it
		// behaves exactly like an unknown one.
		return Answer{Text: SentinelAnswer, Outcome: OutcomeNoContext}
	}

	queryVec, err := a.embedder.EmbedQuery(ctx, question)
	if err != nil {
		a.logger.Error("question embedding failed", "doc_id", docID, "err", err)
		return Answer{Text: FailureAnswer, Outcome: OutcomeFailed, Err: err}
	}

	chunks, err := a.store.SearchByDocument(ctx, docID, queryVec, topK)
	if err != nil {
		a.logger.Error("retrieval failed", "doc_id", docID, "err", err)
		return Answer{Text: FailureAnswer, Outcome: OutcomeFailed, Err: err}
	}

	if len(chunks) == 0 {
		a.logger.Info("no chunks retrieved", "doc_id", docID)
		return Answer{Text: SentinelAnswer, Outcome: OutcomeNoContext}
	}

	contents := make([]string, len(chunks))
	for i, chunk := range chunks {
		contents[i] = chunk.Content
	}

	output, err := a.llm.Complete(ctx, buildPrompt(strings.Join(contents, "\n"), question))
	if err != nil {
		a.logger.Error("answer synthesis failed", "doc_id", docID, "err", err)
		return Answer{Text: FailureAnswer, Outcome: OutcomeFailed, Err: err}
	}

	return Answer{Text: output, Outcome: OutcomeGrounded}
}

func buildPrompt(context, question string) string {
	return fmt.Sprintf(`You are a helpful assistant. Using the provided context from a document,
answer the user's question accurately and concisely. Answer only from the
context. If the context does not contain the information needed to answer,
say so explicitly. When possible, mention the section or article of the
document that supports the answer.

Context:
%s

Question: %s

Answer:`, context, question)
}
