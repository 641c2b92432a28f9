package httpio

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"minirag/internal/rag"
)

// DecodeJSON reads a JSON body of at most limit bytes into dst.
func DecodeJSON(c echo.Context, limit int64, dst interface{}) error {
	req := c.Request()
	if limit > 0 {
		req.Body = http.MaxBytesReader(c.Response(), req.Body, limit)
	}
	if err := json.NewDecoder(req.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, tooLarge.Limit)
		}
		return fmt.Errorf("%w: %v", rag.ErrInvalidInput, err)
	}
	return nil
}
