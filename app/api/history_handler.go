package api

import (
	"time"

	"pdfchat/history"
	"pdfchat/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type HistoryHandler struct {
	transcripts history.TranscriptStore
}

func NewHistoryHandler(transcripts history.TranscriptStore) *HistoryHandler {
	return &HistoryHandler{
		transcripts: transcripts,
	}
}

// HandleGet returns the document's transcript in append order. An unknown
// document id yields an empty list, not an error.
func (h *HistoryHandler) HandleGet(c *fiber.Ctx) error {
	turns, err := h.transcripts.Get(c.Context(), c.Params("documentId"))
	if err != nil {
		return err
	}
	return c.JSON(turns)
}

func (h *HistoryHandler) HandleAppend(c *fiber.Ctx) error {
	var params types.TurnParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}

	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	turn := history.Turn{
		ID:         uuid.New(),
		Role:       params.Role,
		Content:    params.Content,
		Timestamp:  time.Now(),
		DocumentID: c.Params("documentId"),
	}
	if err := h.transcripts.Append(c.Context(), turn.DocumentID, turn); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(turn)
}

func (h *HistoryHandler) HandleClear(c *fiber.Ctx) error {
	if err := h.transcripts.Clear(c.Context(), c.Params("documentId")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"result": "ok"})
}
