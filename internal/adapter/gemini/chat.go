package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"minirag/internal/rag"
)

type ChatModel struct {
	client *genai.Client
	model  string
}

func NewChatModel(client *genai.Client, model string) *ChatModel {
	if model == "" {
		model = defaultChatModel
	}
	return &ChatModel{client: client, model: model}
}

func (m *ChatModel) Complete(ctx context.Context, prompt string) (string, error) {
	gm := m.client.GenerativeModel(m.model)
	gm.SetTemperature(0)

	resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", rag.NewProviderError("gemini", "complete", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", rag.NewProviderError("gemini", "complete", fmt.Errorf("no candidates returned"))
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}
