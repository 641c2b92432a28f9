package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nsqio/go-nsq"

	"minirag/internal/config"
	"minirag/internal/middleware"
)

// Publisher is satisfied by *nsq.Producer.
type Publisher interface {
	Publish(topic string, body []byte) error
}

type UploadCompleted struct {
	EventID       string    `json:"event_id"`
	CorrelationID string    `json:"correlation_id"`
	Collection    string    `json:"collection"`
	Chunks        int       `json:"chunks"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type QueryCompleted struct {
	EventID         string    `json:"event_id"`
	CorrelationID   string    `json:"correlation_id"`
	Question        string    `json:"question"`
	Candidates      int       `json:"candidates"`
	SourcePositions []int     `json:"source_positions"`
	LatencyMs       int64     `json:"latency_ms"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// Emitter publishes completion events. A nil Emitter, or one without a
// publisher, drops every event.
type Emitter struct {
	pub Publisher
}

func NewEmitter(pub Publisher) *Emitter {
	return &Emitter{pub: pub}
}

// NewNSQProducer connects a producer to nsqd at addr.
func NewNSQProducer(addr string) (*nsq.Producer, error) {
	producer, err := nsq.NewProducer(addr, nsq.NewConfig())
	if err != nil {
		return nil, err
	}
	producer.SetLoggerLevel(nsq.LogLevelWarning)
	return producer, nil
}

func (e *Emitter) UploadCompleted(ctx context.Context, collection string, chunks int) {
	e.emit(ctx, config.TopicUploadCompleted, UploadCompleted{
		EventID:       uuid.New().String(),
		CorrelationID: middleware.GetCorrelationID(ctx),
		Collection:    collection,
		Chunks:        chunks,
		OccurredAt:    time.Now().UTC(),
	})
}

func (e *Emitter) QueryCompleted(ctx context.Context, question string, candidates int, positions []int, latency time.Duration) {
	e.emit(ctx, config.TopicQueryCompleted, QueryCompleted{
		EventID:         uuid.New().String(),
		CorrelationID:   middleware.GetCorrelationID(ctx),
		Question:        question,
		Candidates:      candidates,
		SourcePositions: positions,
		LatencyMs:       latency.Milliseconds(),
		OccurredAt:      time.Now().UTC(),
	})
}

// emit never fails the caller; a lost event is logged and dropped.
func (e *Emitter) emit(ctx context.Context, topic string, event interface{}) {
	if e == nil || e.pub == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal event", "topic", topic, "error", err)
		return
	}
	if err := e.pub.Publish(topic, payload); err != nil {
		slog.ErrorContext(ctx, "failed to publish event", "topic", topic, "error", err)
		return
	}
	slog.DebugContext(ctx, "published event", "topic", topic)
}
