package rag

import (
	"context"
)

// CollectionName is the single collection every upload replaces.
const CollectionName = "my_rag_collection_cohere"

const (
	// SearchK is how many candidates the vector search returns.
	SearchK = 10
	// RerankTopN is how many candidates survive reranking.
	RerankTopN = 3
)

// RefusalSentence is what the model must answer when the context is insufficient.
const RefusalSentence = "I do not have enough information to answer this question."

// Chunk is a slice of an uploaded document. Position is 1-based and is the
// only citation key carried end to end.
type Chunk struct {
	Content  string `json:"content"`
	Position int    `json:"position"`
}

type EmbeddedChunk struct {
	Chunk
	Vector []float32
}

// Candidate is a chunk returned by search or rerank, with the score of
// whichever stage produced it.
type Candidate struct {
	Chunk
	Score float32
}

type Source struct {
	Content  string `json:"content"`
	Position int    `json:"position"`
}

type Answer struct {
	Text    string   `json:"answer"`
	Sources []Source `json:"sources"`
}

type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

type VectorStore interface {
	ReplaceCollection(ctx context.Context, name string, chunks []EmbeddedChunk) error
	Search(ctx context.Context, name string, vector []float32, k int) ([]Candidate, error)
}

type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []Candidate, topN int) ([]Candidate, error)
}

// ChatModel completes a single prompt deterministically (temperature 0).
type ChatModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Contents returns the chunk texts of candidates in order.
func Contents(candidates []Candidate) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.Content
	}
	return out
}
