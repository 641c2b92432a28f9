package testutils

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"

	"minirag/internal/rag"
)

// HashEmbedder is a deterministic bag-of-words embedder for tests. Texts
// sharing words get similar vectors.
type HashEmbedder struct {
	Dim int

	mu    sync.Mutex
	Calls int
}

func (e *HashEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.Calls++
	e.mu.Unlock()
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func (e *HashEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.Calls++
	e.mu.Unlock()
	return e.vector(text), nil
}

func (e *HashEmbedder) vector(text string) []float32 {
	dim := e.Dim
	if dim <= 0 {
		dim = 64
	}
	v := make([]float32, dim)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?\"'()[]")
		if w == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(w))
		v[h.Sum32()%uint32(dim)]++
	}
	return v
}

// MemStore is an in-memory rag.VectorStore. ReplaceCollection clears the
// collection and then appends points one at a time, yielding in between, so
// an unguarded reader can observe a partially written collection the way it
// could against a real backend.
type MemStore struct {
	mu          sync.Mutex
	collections map[string][]rag.EmbeddedChunk

	Replaces int
}

func NewMemStore() *MemStore {
	return &MemStore{collections: make(map[string][]rag.EmbeddedChunk)}
}

func (s *MemStore) ReplaceCollection(ctx context.Context, name string, chunks []rag.EmbeddedChunk) error {
	s.mu.Lock()
	s.Replaces++
	s.collections[name] = nil
	s.mu.Unlock()

	for _, c := range chunks {
		runtime.Gosched()
		s.mu.Lock()
		s.collections[name] = append(s.collections[name], c)
		s.mu.Unlock()
	}
	return nil
}

func (s *MemStore) Search(ctx context.Context, name string, vector []float32, k int) ([]rag.Candidate, error) {
	s.mu.Lock()
	points, ok := s.collections[name]
	points = append([]rag.EmbeddedChunk(nil), points...)
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("collection %q: %w", name, rag.ErrNotFound)
	}

	out := make([]rag.Candidate, len(points))
	for i, p := range points {
		out[i] = rag.Candidate{Chunk: p.Chunk, Score: cosine(vector, p.Vector)}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if k < len(out) {
		out = out[:k]
	}
	return out, nil
}

// Snapshot returns a copy of the stored chunks of name.
func (s *MemStore) Snapshot(name string) []rag.EmbeddedChunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]rag.EmbeddedChunk(nil), s.collections[name]...)
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

// EchoModel answers by citing the first position found in the prompt
// context, which lets tests assert on what the model was shown.
type EchoModel struct {
	mu      sync.Mutex
	Prompts []string
}

func (m *EchoModel) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()

	start := strings.Index(prompt, "---\n")
	if start < 0 {
		return rag.RefusalSentence, nil
	}
	body := strings.TrimSpace(prompt[start+4:])
	if i := strings.Index(body, "]"); strings.HasPrefix(body, "[") && i > 0 {
		return "Based on the context " + body[:i+1] + ".", nil
	}
	return rag.RefusalSentence, nil
}
