package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/korventis/sitedocs/internal/auth"
	"github.com/korventis/sitedocs/internal/chunk"
	"github.com/korventis/sitedocs/internal/config"
	"github.com/korventis/sitedocs/internal/core"
	"github.com/korventis/sitedocs/internal/docstore"
	"github.com/korventis/sitedocs/internal/embed"
	"github.com/korventis/sitedocs/internal/extract"
	"github.com/korventis/sitedocs/internal/index"
	"github.com/korventis/sitedocs/internal/llm"
	"github.com/korventis/sitedocs/internal/logger"
	"github.com/korventis/sitedocs/internal/qa"
	"github.com/korventis/sitedocs/internal/rag"
	"github.com/korventis/sitedocs/internal/server"
)

func main() {
	// Parse command line flags
	debug := flag.Bool("debug", false, "Enable debug logging")
	mockStore := flag.Bool("mock-store", false, "Use an in-memory vector store instead of Milvus")
	flag.Parse()

	// Initialize logger
	logger.Init(*debug)

	logger.Info("Starting document service...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Info("Warning: No .env file found or error loading it")
	}

	cfg := config.Load()

	if logger.IsDebugEnabled() {
		logger.Debug("Configuration loaded: MilvusAddr=%s, EmbeddingModel=%s, ChatModel=%s, DatabasePath=%s, UploadDir=%s",
			cfg.MilvusAddr(), cfg.EmbeddingModel, cfg.ChatModel, cfg.DatabasePath, cfg.UploadDir)
	}

	if !*mockStore && cfg.EmbeddingAPIKey == "" {
		logger.Error("EMBEDDING_API_KEY environment variable is required")
		os.Exit(1)
	}
	if cfg.ChatAPIKey == "" {
		logger.Error("CHAT_API_KEY environment variable is required")
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Error("Failed to create upload directory %s: %v", cfg.UploadDir, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Initializing services...")

	policyService := auth.NewPolicyService(cfg.AdminAPIKeys, cfg.AllowedAPIKeys)

	embedService := embed.NewClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel)
	chatService := llm.NewClient(cfg.ChatBaseURL, cfg.ChatAPIKey, cfg.ChatModel)

	var vectors core.VectorStore
	if *mockStore {
		vectors = rag.NewMockStore()
	} else {
		milvus, err := rag.NewMilvusStore(ctx, cfg.MilvusAddr(), embedService, cfg.EmbeddingDim)
		if err != nil {
			logger.Error("Failed to initialize Milvus store: %v", err)
			os.Exit(1)
		}
		if err := milvus.EnsureCollection(ctx); err != nil {
			logger.Error("Failed to prepare Milvus collection: %v", err)
			os.Exit(1)
		}
		defer func() {
			if err := milvus.Close(context.Background()); err != nil {
				logger.Warn("Error closing Milvus connection: %v", err)
			}
		}()
		vectors = milvus
	}

	docs, err := docstore.New(cfg.DatabasePath)
	if err != nil {
		logger.Error("Failed to open document database: %v", err)
		os.Exit(1)
	}
	defer docs.Close()

	splitter := chunk.New(chunk.Config{
		MaxSize: cfg.ChunkMaxSize,
		Overlap: cfg.ChunkOverlap,
	})
	indexer := index.New(extract.New(), splitter, vectors, cfg.IndexBatch)

	retriever := qa.NewRetriever(vectors, cfg.SearchTopK, float32(cfg.SearchCutoff))
	qaService := qa.NewService(retriever, qa.NewAnswerer(chatService))

	srv := server.New(docs, vectors, indexer, qaService, policyService, cfg.UploadDir)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Router(),
	}

	go func() {
		logger.Info("Listening on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error: %v", err)
			cancel()
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("Shutdown signal received")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error: %v", err)
	}

	logger.Info("Document service stopped")
}
