package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"minirag/internal/app"
	"minirag/internal/config"
)

type statefulPinger struct {
	callCount int
	failUntil int
}

func (p *statefulPinger) Ping(ctx context.Context) error {
	p.callCount++
	if p.callCount <= p.failUntil {
		return errors.New("connection refused")
	}
	return nil
}

func TestPingWithRetry_Success(t *testing.T) {
	p := &statefulPinger{}
	err := app.PingWithRetry(context.Background(), p, 1, 1*time.Millisecond)
	assert.NoError(t, err)
	assert.Equal(t, 1, p.callCount)
}

func TestPingWithRetry_Retries(t *testing.T) {
	p := &statefulPinger{failUntil: 2}
	err := app.PingWithRetry(context.Background(), p, 5, 1*time.Millisecond)
	assert.NoError(t, err)
	assert.Equal(t, 3, p.callCount)
}

func TestPingWithRetry_Fail(t *testing.T) {
	p := &statefulPinger{failUntil: 100}
	err := app.PingWithRetry(context.Background(), p, 3, 1*time.Millisecond)
	assert.Error(t, err)
	assert.Equal(t, 3, p.callCount)
}

func TestPingWithRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &statefulPinger{failUntil: 100}
	err := app.PingWithRetry(ctx, p, 5, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, p.callCount)
}

func TestBootstrap_ConfigurationError(t *testing.T) {
	cfg := &config.Config{
		EmbedProvider: "word2vec",
	}
	deps, err := app.Bootstrap(context.Background(), cfg)
	assert.ErrorIs(t, err, config.ErrInvalidValue)
	assert.Nil(t, deps)
}

func TestBootstrap_Resilience_VectorBackendDown(t *testing.T) {
	cfg := &config.Config{
		EmbedProvider:              config.ProviderCohere,
		CohereAPIKey:               "k",
		RerankProvider:             config.ProviderNone,
		LLMProvider:                config.ProviderGroq,
		GroqAPIKey:                 "k",
		VectorBackend:              config.BackendWeaviate,
		WeaviateHost:               "localhost:54322", // Random port likely closed
		WeaviateScheme:             "http",
		ProviderTimeoutSeconds:     1,
		BootstrapRetryAttempts:     1,
		BootstrapRetryDelaySeconds: 0,
	}

	start := time.Now()
	deps, err := app.Bootstrap(context.Background(), cfg)
	duration := time.Since(start)

	assert.Error(t, err)
	assert.Nil(t, deps)
	assert.Contains(t, err.Error(), "weaviate")
	assert.Less(t, duration, 10*time.Second)
}
