package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"minirag/features/document"
	"minirag/features/query"
	"minirag/internal/answer"
	"minirag/internal/config"
	"minirag/internal/events"
	"minirag/internal/ingest"
	"minirag/internal/middleware"
	"minirag/internal/rag"
	"minirag/internal/retrieval"
	"minirag/internal/text"
)

// VectorStore is a rag.VectorStore that can report its own reachability.
type VectorStore interface {
	rag.VectorStore
	Ping(ctx context.Context) error
}

type App struct {
	Handler http.Handler
	Ingest  *ingest.Service
	Query   *retrieval.Service

	port int
}

func New(cfg *config.Config, deps *Dependencies, logger *slog.Logger) (*App, error) {
	if deps == nil || deps.Embedder == nil || deps.Store == nil || deps.Reranker == nil || deps.Model == nil {
		return nil, errors.New("app: embedder, store, reranker and model are required")
	}

	// Held for writing by uploads and for reading by searches
	lock := &sync.RWMutex{}
	emitter := events.NewEmitter(deps.Publisher)

	splitter := text.NewSplitter(text.DefaultChunkSize, text.DefaultChunkOverlap)
	ingestService := ingest.NewService(splitter, deps.Embedder, deps.Store, lock, emitter)

	queryLogger := deps.QueryLogger
	retrievalService := retrieval.NewService(
		deps.Embedder, deps.Store, deps.Reranker, answer.NewGenerator(deps.Model), lock, queryLogger, emitter,
	)

	documentHandler := document.NewHandler(ingestService, cfg.MaxBodyBytes)
	queryHandler := query.NewHandler(retrievalService, cfg.MaxBodyBytes)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echo.WrapMiddleware(middleware.CorrelationID))
	e.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	status := func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "API is running"})
	}
	e.GET("/", status)
	e.GET("/health", status)
	e.POST("/upload", documentHandler.Upload)
	e.POST("/query", queryHandler.Query)

	logger.Info("routes registered", "embed", cfg.EmbedProvider, "vector", cfg.VectorBackend,
		"rerank", cfg.RerankProvider, "llm", cfg.LLMProvider)

	return &App{
		Handler: e,
		Ingest:  ingestService,
		Query:   retrievalService,
		port:    cfg.ServerPort,
	}, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests. It
// returns once the shutdown goroutine has finished, also when the listener
// fails to start.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.port),
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		slog.Info("shutting down server...")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancelShutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	err := srv.ListenAndServe()
	cancel()
	<-done
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
