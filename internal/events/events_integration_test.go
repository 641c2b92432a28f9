package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nsqio/go-nsq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minirag/internal/config"
	"minirag/internal/events"
	"minirag/internal/testutils"
)

func TestEmitter_NSQ_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := testutils.NewIntegrationSuite(t)
	s.Setup()
	defer s.Teardown()

	received := make(chan []byte, 1)
	consumer, err := nsq.NewConsumer(config.TopicUploadCompleted, "test", nsq.NewConfig())
	require.NoError(t, err)
	consumer.AddHandler(nsq.HandlerFunc(func(m *nsq.Message) error {
		received <- m.Body
		return nil
	}))
	defer consumer.Stop()

	events.NewEmitter(s.NSQ).UploadCompleted(context.Background(), "my_rag_collection_cohere", 3)
	require.NoError(t, consumer.ConnectToNSQD(s.NSQDAddr))

	select {
	case body := <-received:
		var ev events.UploadCompleted
		require.NoError(t, json.Unmarshal(body, &ev))
		assert.Equal(t, 3, ev.Chunks)
	case <-time.After(10 * time.Second):
		t.Fatal("no event received")
	}
}
