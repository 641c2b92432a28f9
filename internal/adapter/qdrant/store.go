package qdrant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"minirag/internal/rag"
)

// Payload keys, laid out the way langchain's Qdrant integration writes them.
const (
	contentKey  = "page_content"
	metadataKey = "metadata"
	positionKey = "position"
)

type Store struct {
	points      qdrant.PointsClient
	collections qdrant.CollectionsClient
}

func NewStore(points qdrant.PointsClient, collections qdrant.CollectionsClient) *Store {
	return &Store{points: points, collections: collections}
}

// UpsertBatchSize bounds the points sent in one upsert so a large document
// stays under the server's request size limit.
const UpsertBatchSize = 64

// ReplaceCollection drops name if it exists, recreates it sized to the
// chunks' vectors and writes the chunks in upserts of UpsertBatchSize points.
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

	if _, err := s.collections.Delete(ctx, &qdrant.DeleteCollection{CollectionName: name}); err != nil {
		if status.Code(err) != codes.NotFound {
			return rag.NewProviderError("qdrant", "delete collection", err)
		}
	}

	_, err := s.collections.Create(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(dim),
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return rag.NewProviderError("qdrant", "create collection", err)
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, c := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      &qdrant.PointId{PointIdOptions: &qdrant.PointId_Num{Num: uint64(c.Position)}},
			Vectors: qdrant.NewVectors(c.Vector...),
			Payload: payload(c.Chunk),
		}
	}

	wait := true
	for start := 0; start < len(points); start += UpsertBatchSize {
		end := start + UpsertBatchSize
		if end > len(points) {
			end = len(points)
		}
		resp, err := s.points.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: name,
			Wait:           &wait,
			Points:         points[start:end],
		})
		if err != nil {
			return rag.NewProviderError("qdrant", "upsert", fmt.Errorf("points %d-%d: %w", start+1, end, err))
		}
		st := resp.GetResult().GetStatus()
		if st != qdrant.UpdateStatus_Acknowledged && st != qdrant.UpdateStatus_Completed {
			return rag.NewProviderError("qdrant", "upsert", fmt.Errorf("unexpected update status %s", st))
		}
	}

	slog.InfoContext(ctx, "collection replaced", "backend", "qdrant", "collection", name, "points", len(points), "dim", dim)
	return nil
}

func (s *Store) Search(ctx context.Context, name string, vector []float32, k int) ([]rag.Candidate, error) {
	if k <= 0 {
		return []rag.Candidate{}, nil
	}

	resp, err := s.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: name,
		Vector:         vector,
		Limit:          uint64(k),
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("collection %q: %w", name, rag.ErrNotFound)
		}
		return nil, rag.NewProviderError("qdrant", "search", err)
	}

	candidates := make([]rag.Candidate, 0, len(resp.GetResult()))
	for _, p := range resp.GetResult() {
		candidates = append(candidates, rag.Candidate{
			Chunk: chunkFromPayload(p.GetPayload(), p.GetId()),
			Score: p.GetScore(),
		})
	}
	return candidates, nil
}

// Ping lists collections to confirm the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.collections.List(ctx, &qdrant.ListCollectionsRequest{}); err != nil {
		return rag.NewProviderError("qdrant", "list collections", err)
	}
	return nil
}

func payload(c rag.Chunk) map[string]*qdrant.Value {
	return map[string]*qdrant.Value{
		contentKey: {Kind: &qdrant.Value_StringValue{StringValue: c.Content}},
		metadataKey: {Kind: &qdrant.Value_StructValue{StructValue: &qdrant.Struct{
			Fields: map[string]*qdrant.Value{
				positionKey: {Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(c.Position)}},
			},
		}}},
	}
}

// chunkFromPayload reads a point back into a chunk. Points without a
// position in their metadata fall back to their numeric id.
func chunkFromPayload(p map[string]*qdrant.Value, id *qdrant.PointId) rag.Chunk {
	var c rag.Chunk
	if v, ok := p[contentKey]; ok {
		c.Content = v.GetStringValue()
	}
	if md, ok := p[metadataKey]; ok {
		if pos, ok := md.GetStructValue().GetFields()[positionKey]; ok {
			switch pos.GetKind().(type) {
			case *qdrant.Value_IntegerValue:
				c.Position = int(pos.GetIntegerValue())
			case *qdrant.Value_DoubleValue:
				c.Position = int(pos.GetDoubleValue())
			}
		}
	}
	if c.Position == 0 {
		c.Position = int(id.GetNum())
	}
	return c
}
