package main

import (
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"pagelens/internal/auth"
	"pagelens/internal/config"
	"pagelens/internal/extractor"
	"pagelens/internal/history"
	"pagelens/internal/http"
	"pagelens/internal/index"
	"pagelens/internal/ingest"
	"pagelens/internal/llm"
	"pagelens/internal/rag"
	"pagelens/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize history storage
	var historyStore history.Store
	switch cfg.HistoryBackend {
	case "file":
		store, err := history.NewFileStore(cfg.LocalDBDir)
		if err != nil {
			log.Fatalf("Failed to open file history store: %v", err)
		}
		historyStore = store
		slog.Info("History store initialized", "backend", "file", "dir", cfg.LocalDBDir)
	default:
		store, err := history.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to open history database: %v", err)
		}
		defer func() {
			_ = store.Close()
		}()
		historyStore = store
		slog.Info("History store initialized", "backend", "sqlite", "path", cfg.DBPath)
	}

	// Initialize Qdrant vector store. Per-user collections are created lazily
	// on first ingestion, so nothing to ensure here.
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}
	slog.Info("Qdrant client ready", "url", cfg.QdrantURL, "vector_size", cfg.VectorSize)

	// Embeddings and chat clients share the OpenAI credentials
	embedder := llm.NewEmbeddingsClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModelName, cfg.VectorSize)
	llmClient := llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.LLMModelName)

	userIndex := index.NewUserIndex(embedder, vectorStore, cfg.VectorSize)
	coordinator := ingest.NewCoordinator(extractor.New(), userIndex)
	engine := rag.NewEngine(coordinator, userIndex, llmClient)
	slog.Info("Answer engine initialized", "llm_model", cfg.LLMModelName, "embedding_model", cfg.EmbeddingModelName)

	router := http.NewRouter(&http.Deps{
		Engine:        engine,
		Ingestor:      coordinator,
		HistoryStore:  historyStore,
		VectorStore:   vectorStore,
		Authenticator: auth.NewHMACAuthenticator(cfg.AuthSecret),
	})

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
