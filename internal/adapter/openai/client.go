package openai

import (
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
)

// NewClient builds a client for OpenAI or any OpenAI-compatible API such as
// Groq when baseURL is set.
func NewClient(apiKey, baseURL string, timeout time.Duration) *goopenai.Client {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	return goopenai.NewClientWithConfig(cfg)
}
