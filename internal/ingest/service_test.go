package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"minirag/internal/events"
	"minirag/internal/ingest"
	"minirag/internal/rag"
	"minirag/internal/testutils"
	"minirag/internal/text"
)

type MockEmbedder struct{ mock.Mock }

func (m *MockEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func (m *MockEmbedder) EmbedQuery(ctx context.Context, q string) ([]float32, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]float32), args.Error(1)
}

type MockStore struct{ mock.Mock }

func (m *MockStore) ReplaceCollection(ctx context.Context, name string, chunks []rag.EmbeddedChunk) error {
	args := m.Called(ctx, name, chunks)
	return args.Error(0)
}

func (m *MockStore) Search(ctx context.Context, name string, vector []float32, k int) ([]rag.Candidate, error) {
	args := m.Called(ctx, name, vector, k)
	return args.Get(0).([]rag.Candidate), args.Error(1)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(topic string, body []byte) error {
	args := m.Called(topic, body)
	return args.Error(0)
}

func newSplitter() *text.Splitter {
	return text.NewSplitter(text.DefaultChunkSize, text.DefaultChunkOverlap)
}

func TestService_Upload(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		emb := new(MockEmbedder)
		store := new(MockStore)
		pub := new(MockPublisher)

		emb.On("EmbedDocuments", mock.Anything, []string{"The capital of France is Paris."}).
			Return([][]float32{{0.1, 0.2}}, nil)
		store.On("ReplaceCollection", mock.Anything, rag.CollectionName, []rag.EmbeddedChunk{
			{Chunk: rag.Chunk{Content: "The capital of France is Paris.", Position: 1}, Vector: []float32{0.1, 0.2}},
		}).Return(nil)
		pub.On("Publish", "rag.upload.completed", mock.Anything).Return(nil)

		svc := ingest.NewService(newSplitter(), emb, store, nil, events.NewEmitter(pub))
		n, err := svc.Upload(context.Background(), "The capital of France is Paris.")
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		emb.AssertExpectations(t)
		store.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("Empty Text Touches Nothing", func(t *testing.T) {
		emb := new(MockEmbedder)
		store := new(MockStore)

		svc := ingest.NewService(newSplitter(), emb, store, nil, nil)
		for _, doc := range []string{"", "   \n\n\t"} {
			n, err := svc.Upload(context.Background(), doc)
			require.NoError(t, err)
			assert.Equal(t, 0, n)
		}

		emb.AssertNotCalled(t, "EmbedDocuments", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "ReplaceCollection", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Embedder Failure Leaves Store Alone", func(t *testing.T) {
		emb := new(MockEmbedder)
		store := new(MockStore)
		emb.On("EmbedDocuments", mock.Anything, mock.Anything).
			Return(nil, rag.NewProviderError("cohere", "embed", errors.New("401")))

		svc := ingest.NewService(newSplitter(), emb, store, nil, nil)
		_, err := svc.Upload(context.Background(), "some text")
		assert.True(t, rag.IsProviderError(err))
		store.AssertNotCalled(t, "ReplaceCollection", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Vector Count Mismatch", func(t *testing.T) {
		emb := new(MockEmbedder)
		store := new(MockStore)
		emb.On("EmbedDocuments", mock.Anything, mock.Anything).Return([][]float32{}, nil)

		svc := ingest.NewService(newSplitter(), emb, store, nil, nil)
		_, err := svc.Upload(context.Background(), "some text")
		assert.Error(t, err)
		store.AssertNotCalled(t, "ReplaceCollection", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Store Failure Skips Event", func(t *testing.T) {
		emb := new(MockEmbedder)
		store := new(MockStore)
		pub := new(MockPublisher)
		emb.On("EmbedDocuments", mock.Anything, mock.Anything).Return([][]float32{{1}}, nil)
		store.On("ReplaceCollection", mock.Anything, mock.Anything, mock.Anything).
			Return(rag.NewProviderError("qdrant", "upsert", errors.New("unavailable")))

		svc := ingest.NewService(newSplitter(), emb, store, nil, events.NewEmitter(pub))
		_, err := svc.Upload(context.Background(), "some text")
		assert.True(t, rag.IsProviderError(err))
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

func TestService_Upload_MultipleChunks(t *testing.T) {
	store := testutils.NewMemStore()
	svc := ingest.NewService(newSplitter(), &testutils.HashEmbedder{}, store, nil, nil)

	doc := strings.Repeat("alpha beta gamma delta. ", 200)
	n, err := svc.Upload(context.Background(), doc)
	require.NoError(t, err)
	assert.Greater(t, n, 1)

	stored := store.Snapshot(rag.CollectionName)
	require.Len(t, stored, n)
	for i, c := range stored {
		assert.Equal(t, i+1, c.Position)
	}
}

func TestService_Upload_ConcurrentUploadsKeepOneText(t *testing.T) {
	store := testutils.NewMemStore()
	svc := ingest.NewService(newSplitter(), &testutils.HashEmbedder{}, store, &sync.RWMutex{}, nil)

	const uploads = 8
	var wg sync.WaitGroup
	wg.Add(uploads)
	for i := 0; i < uploads; i++ {
		go func(i int) {
			defer wg.Done()
			doc := strings.Repeat(fmt.Sprintf("document%d says something. ", i), 150)
			_, err := svc.Upload(context.Background(), doc)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored := store.Snapshot(rag.CollectionName)
	require.NotEmpty(t, stored)
	owner := ""
	for _, w := range strings.Fields(stored[0].Content) {
		if strings.HasPrefix(w, "document") {
			owner = w
			break
		}
	}
	require.NotEmpty(t, owner)
	for i, c := range stored {
		assert.Equal(t, i+1, c.Position)
		assert.Equal(t, strings.Count(c.Content, "document"), strings.Count(c.Content, owner),
			"chunk %d mixes uploads", i+1)
	}
	assert.Equal(t, uploads, store.Replaces)
}
