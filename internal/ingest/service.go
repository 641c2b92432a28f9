package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"minirag/internal/events"
	"minirag/internal/rag"
	"minirag/internal/text"
)

type Service struct {
	splitter   *text.Splitter
	embedder   rag.Embedder
	store      rag.VectorStore
	lock       *sync.RWMutex
	events     *events.Emitter
	collection string
}

// NewService wires the upload pipeline. lock must be shared with the query
// side so searches never run against a collection mid-replace.
func NewService(splitter *text.Splitter, embedder rag.Embedder, store rag.VectorStore, lock *sync.RWMutex, emitter *events.Emitter) *Service {
	if lock == nil {
		lock = &sync.RWMutex{}
	}
	return &Service{
		splitter:   splitter,
		embedder:   embedder,
		store:      store,
		lock:       lock,
		events:     emitter,
		collection: rag.CollectionName,
	}
}

// Upload replaces the collection with the chunks of doc and returns how
// many were stored. Text that yields no chunks leaves the collection
// untouched.
func (s *Service) Upload(ctx context.Context, doc string) (int, error) {
	chunks := s.splitter.Split(doc)
	if len(chunks) == 0 {
		slog.InfoContext(ctx, "upload produced no chunks, collection left unchanged")
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return 0, err
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	embedded := make([]rag.EmbeddedChunk, len(chunks))
	for i, c := range chunks {
		embedded[i] = rag.EmbeddedChunk{Chunk: c, Vector: vectors[i]}
	}

	s.lock.Lock()
	err = s.store.ReplaceCollection(ctx, s.collection, embedded)
	s.lock.Unlock()
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "upload stored", "collection", s.collection, "chunks", len(embedded))
	s.events.UploadCompleted(ctx, s.collection, len(embedded))
	return len(embedded), nil
}
