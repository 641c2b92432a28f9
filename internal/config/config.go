package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var (
	ErrMissingRequired = errors.New("missing required configuration")
	ErrInvalidValue    = errors.New("invalid configuration value")
)

const (
	ProviderCohere  = "cohere"
	ProviderJina    = "jina"
	ProviderNone    = "none"
	ProviderGemini  = "gemini"
	ProviderOpenAI  = "openai"
	ProviderGroq    = "groq"
	BackendQdrant   = "qdrant"
	BackendWeaviate = "weaviate"
)

type Config struct {
	// Providers
	EmbedProvider  string `envconfig:"EMBED_PROVIDER" default:"cohere"`
	VectorBackend  string `envconfig:"VECTOR_BACKEND" default:"qdrant"`
	RerankProvider string `envconfig:"RERANK_PROVIDER" default:"cohere"`
	LLMProvider    string `envconfig:"LLM_PROVIDER" default:"groq"`

	CohereAPIKey string `envconfig:"COHERE_API_KEY"`
	GroqAPIKey   string `envconfig:"GROQ_API_KEY"`
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	JinaAPIKey   string `envconfig:"JINA_API_KEY"`

	CohereEmbedModel  string `envconfig:"COHERE_EMBED_MODEL" default:"embed-english-v3.0"`
	CohereRerankModel string `envconfig:"COHERE_RERANK_MODEL" default:"rerank-english-v3.0"`
	JinaRerankModel   string `envconfig:"JINA_RERANK_MODEL" default:"jina-reranker-v1-base-en"`
	GroqModel         string `envconfig:"GROQ_MODEL" default:"llama3-8b-8192"`
	GroqBaseURL       string `envconfig:"GROQ_BASE_URL" default:"https://api.groq.com/openai/v1"`
	OpenAIChatModel   string `envconfig:"OPENAI_CHAT_MODEL" default:"gpt-4o-mini"`
	OpenAIEmbedModel  string `envconfig:"OPENAI_EMBED_MODEL" default:"text-embedding-3-small"`
	GeminiChatModel   string `envconfig:"GEMINI_CHAT_MODEL" default:"gemini-1.5-flash"`
	GeminiEmbedModel  string `envconfig:"GEMINI_EMBED_MODEL" default:"gemini-embedding-001"`

	// Vector database
	QdrantURL      string `envconfig:"QDRANT_URL" default:"http://localhost:6333"`
	QdrantAPIKey   string `envconfig:"QDRANT_API_KEY"`
	QdrantGRPCPort int    `envconfig:"QDRANT_GRPC_PORT" default:"6334"`
	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`
	WeaviateAPIKey string `envconfig:"WEAVIATE_API_KEY"`

	// Events
	NSQDHost string `envconfig:"NSQD_HOST"`

	// Server
	ServerPort         int      `envconfig:"SERVER_PORT" default:"8000"`
	QueryLogPath       string   `envconfig:"QUERY_LOG_PATH" default:"data/logs/query.log"`
	MaxBodyBytes       int64    `envconfig:"MAX_BODY_BYTES" default:"10485760"` // 10MB
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5500,http://127.0.0.1:5500,https://mini-rag-sepia.vercel.app"`

	// Resilience
	ProviderTimeoutSeconds     int `envconfig:"PROVIDER_TIMEOUT_SECONDS" default:"30"`
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Ignore errors, as env vars might be set in the shell
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	_ = godotenv.Load(filepath.Join(cwd, "backend", ".env"))

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutSeconds) * time.Second
}

// Validate checks provider names and that the selected providers have keys.
func (c *Config) Validate() error {
	switch c.EmbedProvider {
	case ProviderCohere:
		if c.CohereAPIKey == "" {
			return fmt.Errorf("%w: COHERE_API_KEY", ErrMissingRequired)
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingRequired)
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingRequired)
		}
	default:
		return fmt.Errorf("%w: EMBED_PROVIDER=%q", ErrInvalidValue, c.EmbedProvider)
	}

	switch c.RerankProvider {
	case ProviderCohere:
		if c.CohereAPIKey == "" {
			return fmt.Errorf("%w: COHERE_API_KEY", ErrMissingRequired)
		}
	case ProviderJina:
		if c.JinaAPIKey == "" {
			return fmt.Errorf("%w: JINA_API_KEY", ErrMissingRequired)
		}
	case ProviderNone:
	default:
		return fmt.Errorf("%w: RERANK_PROVIDER=%q", ErrInvalidValue, c.RerankProvider)
	}

	switch c.LLMProvider {
	case ProviderGroq:
		if c.GroqAPIKey == "" {
			return fmt.Errorf("%w: GROQ_API_KEY", ErrMissingRequired)
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingRequired)
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingRequired)
		}
	default:
		return fmt.Errorf("%w: LLM_PROVIDER=%q", ErrInvalidValue, c.LLMProvider)
	}

	switch c.VectorBackend {
	case BackendQdrant:
		if c.QdrantURL == "" {
			return fmt.Errorf("%w: QDRANT_URL", ErrMissingRequired)
		}
	case BackendWeaviate:
		if c.WeaviateHost == "" {
			return fmt.Errorf("%w: WEAVIATE_HOST", ErrMissingRequired)
		}
	default:
		return fmt.Errorf("%w: VECTOR_BACKEND=%q", ErrInvalidValue, c.VectorBackend)
	}

	if len(c.CORSAllowedOrigins) == 0 {
		return fmt.Errorf("%w: CORS_ALLOWED_ORIGINS", ErrMissingRequired)
	}
	return nil
}
