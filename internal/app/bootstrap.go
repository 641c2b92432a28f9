package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"minirag/internal/adapter/cohere"
	"minirag/internal/adapter/gemini"
	"minirag/internal/adapter/openai"
	"minirag/internal/adapter/qdrant"
	"minirag/internal/adapter/reranker"
	wstore "minirag/internal/adapter/weaviate"
	"minirag/internal/config"
	"minirag/internal/events"
	"minirag/internal/rag"
	"minirag/internal/retrieval"

	"github.com/google/generative-ai-go/genai"
)

type Dependencies struct {
	Embedder    rag.Embedder
	Store       VectorStore
	Reranker    rag.Reranker
	Model       rag.ChatModel
	Publisher   events.Publisher
	QueryLogger *retrieval.QueryLogger

	closers []io.Closer
}

func (d *Dependencies) Close() {
	for _, c := range d.closers {
		if err := c.Close(); err != nil {
			slog.Warn("failed to close dependency", "error", err)
		}
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func Bootstrap(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	deps := &Dependencies{}
	timeout := cfg.ProviderTimeout()

	// Gemini client is shared by the embedder and the chat model
	var geminiClient *genai.Client
	if cfg.EmbedProvider == config.ProviderGemini || cfg.LLMProvider == config.ProviderGemini {
		c, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, fmt.Errorf("gemini client error: %w", err)
		}
		geminiClient = c
		deps.closers = append(deps.closers, c)
	}

	// Embedder
	switch cfg.EmbedProvider {
	case config.ProviderCohere:
		deps.Embedder = cohere.NewEmbedder(cfg.CohereAPIKey, cfg.CohereEmbedModel, timeout)
	case config.ProviderGemini:
		deps.Embedder = gemini.NewEmbedder(geminiClient, cfg.GeminiEmbedModel)
	case config.ProviderOpenAI:
		client := openai.NewClient(cfg.OpenAIAPIKey, "", timeout)
		deps.Embedder = openai.NewEmbedder(cfg.OpenAIAPIKey, cfg.OpenAIEmbedModel, client)
	default:
		deps.Close()
		return nil, fmt.Errorf("%w: EMBED_PROVIDER=%q", config.ErrInvalidValue, cfg.EmbedProvider)
	}

	// Reranker
	rerankModel := cfg.CohereRerankModel
	rerankKey := cfg.CohereAPIKey
	if cfg.RerankProvider == config.ProviderJina {
		rerankModel, rerankKey = cfg.JinaRerankModel, cfg.JinaAPIKey
	}
	deps.Reranker = reranker.NewClient(cfg.RerankProvider, rerankKey, rerankModel, timeout)

	// Language model
	switch cfg.LLMProvider {
	case config.ProviderGroq:
		client := openai.NewClient(cfg.GroqAPIKey, cfg.GroqBaseURL, timeout)
		deps.Model = openai.NewChatModel(config.ProviderGroq, cfg.GroqAPIKey, cfg.GroqModel, client)
	case config.ProviderOpenAI:
		client := openai.NewClient(cfg.OpenAIAPIKey, "", timeout)
		deps.Model = openai.NewChatModel(config.ProviderOpenAI, cfg.OpenAIAPIKey, cfg.OpenAIChatModel, client)
	case config.ProviderGemini:
		deps.Model = gemini.NewChatModel(geminiClient, cfg.GeminiChatModel)
	default:
		deps.Close()
		return nil, fmt.Errorf("%w: LLM_PROVIDER=%q", config.ErrInvalidValue, cfg.LLMProvider)
	}

	// Vector database
	switch cfg.VectorBackend {
	case config.BackendQdrant:
		store, conn, err := qdrant.Dial(cfg.QdrantURL, cfg.QdrantAPIKey, cfg.QdrantGRPCPort)
		if err != nil {
			deps.Close()
			return nil, err
		}
		deps.Store = store
		deps.closers = append(deps.closers, conn)
	case config.BackendWeaviate:
		client, err := wstore.NewClient(cfg.WeaviateHost, cfg.WeaviateScheme, cfg.WeaviateAPIKey)
		if err != nil {
			deps.Close()
			return nil, err
		}
		deps.Store = wstore.NewStore(client)
	default:
		deps.Close()
		return nil, fmt.Errorf("%w: VECTOR_BACKEND=%q", config.ErrInvalidValue, cfg.VectorBackend)
	}

	retryDelay := time.Duration(cfg.BootstrapRetryDelaySeconds) * time.Second
	if err := PingWithRetry(ctx, deps.Store, cfg.BootstrapRetryAttempts, retryDelay); err != nil {
		deps.Close()
		return nil, fmt.Errorf("%s unreachable: %w", cfg.VectorBackend, err)
	}

	// NSQ Producer (optional)
	if cfg.NSQDHost != "" {
		producer, err := events.NewNSQProducer(cfg.NSQDHost)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("nsq producer error: %w", err)
		}
		deps.Publisher = producer
		deps.closers = append(deps.closers, closerFunc(func() error { producer.Stop(); return nil }))
	}

	// Query log
	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}
	deps.QueryLogger = queryLogger
	deps.closers = append(deps.closers, queryLogger)

	return deps, nil
}

// Pinger reports whether a backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingWithRetry pings p up to attempts times, sleeping delay between tries.
func PingWithRetry(ctx context.Context, p Pinger, attempts int, delay time.Duration) error {
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = p.Ping(ctx); err == nil {
			return nil
		}
		slog.Warn("vector backend not reachable, retrying...", "attempt", i+1, "error", err)
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return err
}
