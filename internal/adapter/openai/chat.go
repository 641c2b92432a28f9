package openai

import (
	"context"
	"fmt"
	"math"

	goopenai "github.com/sashabaranov/go-openai"

	"minirag/internal/rag"
)

// ChatModel sends single-prompt completions to OpenAI or Groq.
type ChatModel struct {
	client   *goopenai.Client
	provider string
	apiKey   string
	model    string
}

func NewChatModel(provider, apiKey, model string, client *goopenai.Client) *ChatModel {
	return &ChatModel{client: client, provider: provider, apiKey: apiKey, model: model}
}

func (m *ChatModel) Complete(ctx context.Context, prompt string) (string, error) {
	if m.apiKey == "" {
		return "", rag.NewProviderError(m.provider, "complete", rag.ErrMissingAPIKey)
	}

	resp, err := m.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: m.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		// A zero temperature is dropped by omitempty; this is the smallest value that is sent.
		Temperature: math.SmallestNonzeroFloat32,
	})
	if err != nil {
		return "", rag.NewProviderError(m.provider, "complete", err)
	}
	if len(resp.Choices) == 0 {
		return "", rag.NewProviderError(m.provider, "complete", fmt.Errorf("no choices returned"))
	}
	return resp.Choices[0].Message.Content, nil
}
