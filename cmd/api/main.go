package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/docchat/backend/internal/config"
	"github.com/docchat/backend/internal/embedding"
	"github.com/docchat/backend/internal/handler"
	"github.com/docchat/backend/internal/logging"
	"github.com/docchat/backend/internal/service/ai"
	chatservice "github.com/docchat/backend/internal/service/chat"
	"github.com/docchat/backend/internal/service/retrieval"
	"github.com/docchat/backend/internal/vectorstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	zapLogger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()
	logger := zapLogger.Sugar()

	embedder, err := embedding.NewClient(embedding.Config{
		BaseURL: cfg.Retrieval.EmbeddingBaseURL,
		APIKey:  cfg.Retrieval.EmbeddingAPIKey,
		Model:   cfg.Retrieval.EmbeddingModel,
		Timeout: time.Duration(cfg.Retrieval.TimeoutSecs) * time.Second,
	})
	if err != nil {
		logger.Fatalw("failed to initialize embeddings client", "error", err)
	}

	index := vectorstore.NewStorage(vectorstore.Config{
		URL:        cfg.Retrieval.QdrantURL,
		APIKey:     cfg.Retrieval.QdrantAPIKey,
		Collection: cfg.Retrieval.QdrantCollection,
		Timeout:    time.Duration(cfg.Retrieval.TimeoutSecs) * time.Second,
	})

	gateway := retrieval.NewGateway(embedder, index, logger)

	// The index is the one dependency the service cannot run without.
	if err := gateway.Ready(ctx); err != nil {
		logger.Fatalw("document index unavailable, refusing to start", "error", err)
	}

	var generator chatservice.Generator
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI, gateway, logger)
		if err != nil {
			logger.Warnw("failed to initialize generation service, continuing degraded", "error", err)
		} else {
			generator = aiService
			logger.Infow("generation service initialized", "model", cfg.AI.Model)
		}
	} else {
		logger.Warnw("model credentials not configured, answers will use the fallback response")
	}

	store := chatservice.NewMemoryStore(cfg.Chat.RetentionLimit)
	orchestrator := chatservice.NewOrchestrator(store, generator, gateway, logger,
		cfg.Chat.HistoryWindow, cfg.Chat.SourceTopK)

	router := handler.NewRouter(orchestrator, gateway, cfg.Server.AllowedOrigins, logger)

	startServer(ctx, cfg.Server, router, logger)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *zap.SugaredLogger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Infow("chat backend listening", "addr", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		logger.Fatalw("server error", "error", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
