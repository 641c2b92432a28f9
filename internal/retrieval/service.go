package retrieval

import (
	"context"
	"sync"
	"time"

	"minirag/internal/answer"
	"minirag/internal/events"
	"minirag/internal/middleware"
	"minirag/internal/rag"
)

type Service struct {
	embedder   rag.Embedder
	store      rag.VectorStore
	reranker   rag.Reranker
	generator  *answer.Generator
	lock       *sync.RWMutex
	logger     *QueryLogger
	events     *events.Emitter
	collection string
}

// NewService wires the query pipeline. lock is the one the ingest side holds
// while replacing the collection.
func NewService(e rag.Embedder, s rag.VectorStore, r rag.Reranker, g *answer.Generator, lock *sync.RWMutex, l *QueryLogger, emitter *events.Emitter) *Service {
	if lock == nil {
		lock = &sync.RWMutex{}
	}
	return &Service{
		embedder:   e,
		store:      s,
		reranker:   r,
		generator:  g,
		lock:       lock,
		logger:     l,
		events:     emitter,
		collection: rag.CollectionName,
	}
}

// Query embeds question, retrieves the nearest chunks, keeps the most
// relevant ones and asks the model for a cited answer.
func (s *Service) Query(ctx context.Context, question string) (*rag.Answer, error) {
	start := time.Now()

	// 1. Embed Question
	vec, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, err
	}

	// 2. Vector Search
	s.lock.RLock()
	candidates, err := s.store.Search(ctx, s.collection, vec, rag.SearchK)
	s.lock.RUnlock()
	if err != nil {
		return nil, err
	}

	// 3. Rerank
	ranked := candidates
	if len(candidates) > 0 {
		ranked, err = s.reranker.Rerank(ctx, question, candidates, rag.RerankTopN)
		if err != nil {
			return nil, err
		}
	}

	// 4. Generate
	ans, err := s.generator.Generate(ctx, question, ranked)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	positions := make([]int, len(ans.Sources))
	for i, src := range ans.Sources {
		positions[i] = src.Position
	}
	if s.logger != nil {
		s.logger.Log(QueryLogEntry{
			Question:        question,
			Candidates:      len(candidates),
			SourcePositions: positions,
			Duration:        elapsed,
			CorrelationID:   middleware.GetCorrelationID(ctx),
		})
	}
	s.events.QueryCompleted(ctx, question, len(candidates), positions, elapsed)

	return ans, nil
}
