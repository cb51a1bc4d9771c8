package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/courseforge-ai/courseforge/internal/config"
	"github.com/courseforge-ai/courseforge/internal/core/chunker"
	db "github.com/courseforge-ai/courseforge/internal/core/database"
	"github.com/courseforge-ai/courseforge/internal/core/extractor"
	"github.com/courseforge-ai/courseforge/internal/core/llm"
	"github.com/courseforge-ai/courseforge/internal/services"
)

type App struct {
	Store    *db.DatabaseClient
	Provider *llm.GeminiProvider
	Server   *Server
	log      *zap.SugaredLogger
}

func NewApp(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*App, error) {
	store, err := db.NewDatabaseClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("database initialized and ready")

	provider, err := llm.NewGeminiProvider(ctx, cfg.AIAPIKey)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	aiClient := llm.NewClient(provider, cfg.GenModels, log)
	log.Infow("ai client ready", "models", cfg.GenModels)

	docExtractor := extractor.NewDocconvExtractor(false)
	contentChunker := chunker.New(aiClient, log)

	ingestSvc := services.NewIngestService(store, docExtractor, aiClient, contentChunker, log)
	courseSvc := services.NewCourseService(store)

	server := NewServer(cfg, ingestSvc, courseSvc, log)

	return &App{Store: store, Provider: provider, Server: server, log: log}, nil
}

func (a *App) Close() {
	if a.Provider != nil {
		_ = a.Provider.Close()
	}
	if a.Store != nil {
		_ = a.Store.Close()
	}
}
