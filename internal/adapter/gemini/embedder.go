package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"minirag/internal/rag"
)

const (
	defaultEmbedModel = "gemini-embedding-001"
	defaultChatModel  = "gemini-1.5-flash"

	// maxBatch is the batchEmbedContents request limit.
	maxBatch = 100
)

// NewClient opens a Gemini client. It fails with a ProviderError when no
// key is given.
func NewClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*genai.Client, error) {
	if apiKey == "" {
		return nil, rag.NewProviderError("gemini", "connect", rag.ErrMissingAPIKey)
	}
	opts = append(opts, option.WithAPIKey(apiKey))
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, rag.NewProviderError("gemini", "connect", err)
	}
	return client, nil
}

type Embedder struct {
	client *genai.Client
	model  string
}

func NewEmbedder(client *genai.Client, model string) *Embedder {
	if model == "" {
		model = defaultEmbedModel
	}
	return &Embedder{client: client, model: model}
}

func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	em := e.client.EmbeddingModel(e.model)
	em.TaskType = genai.TaskTypeRetrievalDocument

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatch {
		end := start + maxBatch
		if end > len(texts) {
			end = len(texts)
		}

		batch := em.NewBatch()
		for _, t := range texts[start:end] {
			batch.AddContent(genai.Text(t))
		}

		slog.DebugContext(ctx, "embedding content", "model", e.model, "count", end-start)
		res, err := em.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, rag.NewProviderError("gemini", "embed", err)
		}
		if len(res.Embeddings) != end-start {
			return nil, rag.NewProviderError("gemini", "embed",
				fmt.Errorf("expected %d embeddings, got %d", end-start, len(res.Embeddings)))
		}
		for _, emb := range res.Embeddings {
			vectors = append(vectors, emb.Values)
		}
	}
	return vectors, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	em := e.client.EmbeddingModel(e.model)
	em.TaskType = genai.TaskTypeRetrievalQuery

	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, rag.NewProviderError("gemini", "embed", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, rag.NewProviderError("gemini", "embed", fmt.Errorf("empty embedding received"))
	}
	return res.Embedding.Values, nil
}
