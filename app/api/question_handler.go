package api

import (
	"context"
	"log/slog"

	"pdfchat/app/agent"
	"pdfchat/types"

	"github.com/gofiber/fiber/v2"
)

// Answerer runs the query pipeline for one validated question.
type Answerer interface {
	Answer(ctx context.Context, question, documentID string) agent.Answer
}

type QuestionHandler struct {
	agent  Answerer
	logger *slog.Logger
}

func NewQuestionHandler(answerer Answerer) *QuestionHandler {
	return &QuestionHandler{
		agent:  answerer,
		logger: slog.Default().With("component", "api"),
	}
}

// HandleQuestion validates the request, then always answers 200: grounded
// answers, the no-context sentinel and internal failures all come back in
// the same envelope. Only validation rejects with 400.
func (h *QuestionHandler) HandleQuestion(c *fiber.Ctx) error {
	var params types.QuestionParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}

	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	answer := h.agent.Answer(c.Context(), params.Question, params.DocumentID)
	if answer.Outcome == agent.OutcomeFailed {
		h.logger.Error("question degraded to soft failure", "document_id", params.DocumentID, "err", answer.Err)
	}

	return c.JSON(types.AnswerResponse{Answer: answer.Text})
}
