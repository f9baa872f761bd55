package api

import (
	"context"
	"io"

	"pdfchat/ingest"
	"pdfchat/types"

	"github.com/gofiber/fiber/v2"
)

// Ingester runs the ingestion pipeline for one uploaded document.
type Ingester interface {
	Ingest(ctx context.Context, filename string, payload []byte) (*ingest.Result, error)
}

type UploadHandler struct {
	pipeline Ingester
}

func NewUploadHandler(pipeline Ingester) *UploadHandler {
	return &UploadHandler{
		pipeline: pipeline,
	}
}

// HandleUpload accepts a multipart "file" field, ingests it, and reports
// the summary, document id and page count. Processing failures answer 500
// with the raw error message as a plain-text body.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return ErrNoFile()
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}

	result, err := h.pipeline.Ingest(c.Context(), fileHeader.Filename, payload)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}

	return c.JSON(types.UploadResponse{
		Summary:    result.Summary,
		DocumentID: result.DocumentID.String(),
		PageCount:  result.PageCount,
	})
}
