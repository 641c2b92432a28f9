package httpio_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minirag/internal/httpio"
	"minirag/internal/rag"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"Provider", rag.NewProviderError("cohere", "embed", errors.New("401")), http.StatusBadGateway},
		{"Wrapped Provider", fmt.Errorf("query: %w", rag.NewProviderError("groq", "complete", errors.New("x"))), http.StatusBadGateway},
		{"Not Found", fmt.Errorf("collection: %w", rag.ErrNotFound), http.StatusNotFound},
		{"Invalid Input", fmt.Errorf("%w: bad json", rag.ErrInvalidInput), http.StatusBadRequest},
		{"Too Large", fmt.Errorf("%w: limit 10", httpio.ErrBodyTooLarge), http.StatusRequestEntityTooLarge},
		{"Other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, httpio.StatusCode(tt.err))
		})
	}
}

func TestWriteError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/query", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := httpio.WriteError(c, "query", rag.NewProviderError("groq", "complete", errors.New("rate limited")))
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "An error occurred during query: groq complete: rate limited", body["error"])
}
