package weaviate

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"minirag/internal/rag"
	"minirag/internal/vector"
)

type Store struct {
	client *weaviate.Client
	schema vector.SchemaClient
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client, schema: vector.NewSchemaAdapter(client)}
}

// NewClient builds a Weaviate client; apiKey is optional.
func NewClient(host, scheme, apiKey string) (*weaviate.Client, error) {
	cfg := weaviate.Config{Host: host, Scheme: scheme}
	if apiKey != "" {
		cfg.AuthConfig = auth.ApiKey{Value: apiKey}
	}
	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("weaviate client error: %w", err)
	}
	return client, nil
}

func (s *Store) ReplaceCollection(ctx context.Context, name string, chunks []rag.EmbeddedChunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no chunks to store", rag.ErrInvalidInput)
	}
	dim := len(chunks[0].Vector)
	for _, c := range chunks {
		if len(c.Vector) != dim || dim == 0 {
			return fmt.Errorf("%w: inconsistent vector dimensions", rag.ErrInvalidInput)
		}
	}

	className := vector.ClassName(name)
	if err := vector.RecreateClass(ctx, s.schema, className); err != nil {
		return rag.NewProviderError("weaviate", "recreate class", err)
	}

	objects := make([]*models.Object, len(chunks))
	for i, c := range chunks {
		objects[i] = &models.Object{
			Class: className,
			Properties: map[string]interface{}{
				vector.PropContent:  c.Content,
				vector.PropPosition: c.Position,
			},
			Vector: models.C11yVector(c.Vector),
		}
	}

	resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return rag.NewProviderError("weaviate", "batch import", err)
	}
	for _, r := range resp {
		if r.Result != nil && r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
			return rag.NewProviderError("weaviate", "batch import",
				fmt.Errorf("object rejected: %s", r.Result.Errors.Error[0].Message))
		}
	}

	slog.InfoContext(ctx, "collection replaced", "backend", "weaviate", "class", className, "objects", len(objects), "dim", dim)
	return nil
}

func (s *Store) Search(ctx context.Context, name string, vec []float32, k int) ([]rag.Candidate, error) {
	if k <= 0 {
		return []rag.Candidate{}, nil
	}
	className := vector.ClassName(name)

	exists, err := s.schema.ClassExists(ctx, className)
	if err != nil {
		return nil, rag.NewProviderError("weaviate", "search", err)
	}
	if !exists {
		return nil, fmt.Errorf("collection %q: %w", name, rag.ErrNotFound)
	}

	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vec)
	fields := []graphql.Field{
		{Name: vector.PropContent},
		{Name: vector.PropPosition},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(className).
		WithNearVector(nearVector).
		WithLimit(k).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, rag.NewProviderError("weaviate", "search", err)
	}
	if len(res.Errors) > 0 {
		return nil, rag.NewProviderError("weaviate", "search", fmt.Errorf("graphql error: %s", res.Errors[0].Message))
	}

	var candidates []rag.Candidate
	if data, ok := res.Data["Get"].(map[string]interface{}); ok {
		if objs, ok := data[className].([]interface{}); ok {
			for _, o := range objs {
				props, ok := o.(map[string]interface{})
				if !ok {
					continue
				}
				var c rag.Candidate
				if content, ok := props[vector.PropContent].(string); ok {
					c.Content = content
				}
				if pos, ok := props[vector.PropPosition].(float64); ok {
					c.Position = int(pos)
				}
				if additional, ok := props["_additional"].(map[string]interface{}); ok {
					c.Score = 1 - distance(additional["distance"])
				}
				candidates = append(candidates, c)
			}
		}
	}
	if candidates == nil {
		candidates = []rag.Candidate{}
	}
	return candidates, nil
}

// Ping reports whether the Weaviate node is ready.
func (s *Store) Ping(ctx context.Context) error {
	ready, err := s.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return rag.NewProviderError("weaviate", "ready", err)
	}
	if !ready {
		return rag.NewProviderError("weaviate", "ready", fmt.Errorf("node not ready"))
	}
	return nil
}

// distance reads _additional.distance, which arrives as a number or, from
// some server versions, a string.
func distance(v interface{}) float32 {
	switch d := v.(type) {
	case float64:
		return float32(d)
	case string:
		f, err := strconv.ParseFloat(d, 32)
		if err == nil {
			return float32(f)
		}
	}
	return 1
}
