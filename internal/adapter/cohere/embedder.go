package cohere

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"minirag/internal/rag"
)

const (
	defaultURL   = "https://api.cohere.com/v1/embed"
	defaultModel = "embed-english-v3.0"

	// MaxBatch is the most texts Cohere accepts in one embed call.
	MaxBatch = 96

	inputTypeDocument = "search_document"
	inputTypeQuery    = "search_query"
)

type Embedder struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewEmbedder(apiKey, model string, timeout time.Duration) *Embedder {
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Embedder{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (e *Embedder) SetBaseURL(url string) {
	e.baseURL = url
}

// EmbedDocuments embeds texts in order, MaxBatch at a time. Batches are sent
// one after another; the first failure aborts the whole call.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += MaxBatch {
		end := start + MaxBatch
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := e.embed(ctx, texts[start:end], inputTypeDocument)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embed(ctx, []string{text}, inputTypeQuery)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *Embedder) embed(ctx context.Context, texts []string, inputType string) ([][]float32, error) {
	if e.apiKey == "" {
		return nil, rag.NewProviderError("cohere", "embed", rag.ErrMissingAPIKey)
	}

	slog.DebugContext(ctx, "embedding content", "model", e.model, "count", len(texts), "input_type", inputType)

	reqBody := map[string]interface{}{
		"model":      e.model,
		"texts":      texts,
		"input_type": inputType,
		"truncate":   "END",
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, rag.NewProviderError("cohere", "embed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, rag.NewProviderError("cohere", "embed", &rag.StatusError{StatusCode: resp.StatusCode, Body: string(body)})
	}

	var result struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, rag.NewProviderError("cohere", "embed", fmt.Errorf("decode response: %w", err))
	}
	if len(result.Embeddings) != len(texts) {
		return nil, rag.NewProviderError("cohere", "embed",
			fmt.Errorf("expected %d embeddings, got %d", len(texts), len(result.Embeddings)))
	}
	return result.Embeddings, nil
}
