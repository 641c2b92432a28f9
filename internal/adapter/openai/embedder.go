package openai

import (
	"context"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"minirag/internal/rag"
)

type Embedder struct {
	client *goopenai.Client
	apiKey string
	model  string
}

func NewEmbedder(apiKey, model string, client *goopenai.Client) *Embedder {
	if model == "" {
		model = string(goopenai.SmallEmbedding3)
	}
	return &Embedder{client: client, apiKey: apiKey, model: model}
}

func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	return e.embed(ctx, texts)
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *Embedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	if e.apiKey == "" {
		return nil, rag.NewProviderError("openai", "embed", rag.ErrMissingAPIKey)
	}

	resp, err := e.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Model: goopenai.EmbeddingModel(e.model),
		Input: texts,
	})
	if err != nil {
		return nil, rag.NewProviderError("openai", "embed", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, rag.NewProviderError("openai", "embed",
			fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data)))
	}

	// Data carries its own index; align on it rather than on response order.
	vecs := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vecs) {
			return nil, rag.NewProviderError("openai", "embed", fmt.Errorf("embedding index %d out of range", d.Index))
		}
		vecs[d.Index] = d.Embedding
	}
	return vecs, nil
}
