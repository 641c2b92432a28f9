package document

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"minirag/internal/httpio"
	"minirag/internal/rag"
)

// Uploader replaces the document collection with the chunks of a text.
type Uploader interface {
	Upload(ctx context.Context, text string) (int, error)
}

type Handler struct {
	uploader     Uploader
	maxBodyBytes int64
}

func NewHandler(uploader Uploader, maxBodyBytes int64) *Handler {
	return &Handler{uploader: uploader, maxBodyBytes: maxBodyBytes}
}

type uploadRequest struct {
	Text *string `json:"text"`
}

type UploadResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// Upload handles POST /upload.
func (h *Handler) Upload(c echo.Context) error {
	var req uploadRequest
	if err := httpio.DecodeJSON(c, h.maxBodyBytes, &req); err != nil {
		return httpio.WriteError(c, "upload", err)
	}
	if req.Text == nil {
		return httpio.WriteError(c, "upload", fmt.Errorf("%w: field \"text\" is required", rag.ErrInvalidInput))
	}

	n, err := h.uploader.Upload(c.Request().Context(), *req.Text)
	if err != nil {
		return httpio.WriteError(c, "upload", err)
	}

	return c.JSON(http.StatusOK, UploadResponse{
		Message: fmt.Sprintf("Successfully uploaded %d chunks.", n),
		Count:   n,
	})
}
