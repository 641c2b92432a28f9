package query

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"minirag/internal/httpio"
	"minirag/internal/rag"
)

// Answerer answers a question from the stored document.
type Answerer interface {
	Query(ctx context.Context, question string) (*rag.Answer, error)
}

type Handler struct {
	answerer     Answerer
	maxBodyBytes int64
}

func NewHandler(answerer Answerer, maxBodyBytes int64) *Handler {
	return &Handler{answerer: answerer, maxBodyBytes: maxBodyBytes}
}

type queryRequest struct {
	Question *string `json:"question"`
}

// Query handles POST /query.
func (h *Handler) Query(c echo.Context) error {
	var req queryRequest
	if err := httpio.DecodeJSON(c, h.maxBodyBytes, &req); err != nil {
		return httpio.WriteError(c, "query", err)
	}
	if req.Question == nil {
		return httpio.WriteError(c, "query", fmt.Errorf("%w: field \"question\" is required", rag.ErrInvalidInput))
	}

	ans, err := h.answerer.Query(c.Request().Context(), *req.Question)
	if err != nil {
		return httpio.WriteError(c, "query", err)
	}
	if ans.Sources == nil {
		ans.Sources = []rag.Source{}
	}
	return c.JSON(http.StatusOK, ans)
}
