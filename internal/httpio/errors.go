package httpio

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"minirag/internal/rag"
)

// ErrBodyTooLarge is returned when a request body exceeds the configured limit.
var ErrBodyTooLarge = errors.New("request body too large")

// StatusCode maps a pipeline error to its HTTP status.
func StatusCode(err error) int {
	var pe *rag.ProviderError
	switch {
	case errors.As(err, &pe):
		return http.StatusBadGateway
	case errors.Is(err, rag.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, rag.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteError logs err and sends {"error": "An error occurred during <op>: <err>"}.
func WriteError(c echo.Context, op string, err error) error {
	status := StatusCode(err)
	ctx := c.Request().Context()
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request failed", "op", op, "status", status, "error", err)
	} else {
		slog.WarnContext(ctx, "request rejected", "op", op, "status", status, "error", err)
	}
	return c.JSON(status, map[string]string{
		"error": "An error occurred during " + op + ": " + err.Error(),
	})
}
