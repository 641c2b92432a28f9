package answer

import (
	"context"
	"log/slog"

	"minirag/internal/rag"
)

type Generator struct {
	model rag.ChatModel
}

func NewGenerator(model rag.ChatModel) *Generator {
	return &Generator{model: model}
}

// Generate answers question from the ranked chunks. Sources mirror the
// ranked chunks in order. With no chunks the model is not consulted and the
// refusal sentence is returned.
func (g *Generator) Generate(ctx context.Context, question string, ranked []rag.Candidate) (*rag.Answer, error) {
	sources := make([]rag.Source, len(ranked))
	for i, c := range ranked {
		sources[i] = rag.Source{Content: c.Content, Position: c.Position}
	}

	if len(ranked) == 0 {
		slog.InfoContext(ctx, "no context retrieved, skipping generation")
		return &rag.Answer{Text: rag.RefusalSentence, Sources: sources}, nil
	}

	text, err := g.model.Complete(ctx, RenderPrompt(BuildContext(ranked), question))
	if err != nil {
		return nil, err
	}
	return &rag.Answer{Text: text, Sources: sources}, nil
}
