package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/studykit/flashgen/internal/config"
	"github.com/studykit/flashgen/internal/core"
	db "github.com/studykit/flashgen/internal/core/database"
	"github.com/studykit/flashgen/internal/core/extract"
	"github.com/studykit/flashgen/internal/core/generation_engine"
	"github.com/studykit/flashgen/internal/core/llm"
	objectclient "github.com/studykit/flashgen/internal/core/object-client"
	"github.com/studykit/flashgen/internal/services"
)

type App struct {
	DBClient     core.DbClient
	ObjectClient core.ObjectClient
	Provider     core.AIProvider
	Processor    *generation_engine.Processor
	Server       *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Object client initialized and ready.")

	provider, err := llm.NewProvider(appCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the AI provider: %w", err)
	}
	log.Printf("AI provider %q ready.", provider.Name())

	extractor := extract.NewExtractor()

	procCfg := &generation_engine.ProcessorConfig{
		BudgetChars:     cfg.BudgetChars(),
		MaxCards:        cfg.MaxCards,
		MaxAttempts:     cfg.MaxAttempts,
		GenerateTimeout: time.Duration(cfg.AITimeoutSeconds) * time.Second,
		TaskTimeout:     time.Duration(cfg.TaskTimeoutSecs) * time.Second,
	}
	processor := generation_engine.NewProcessor(dbClient, objClient, provider, extractor, cfg.BucketName, procCfg)
	processor.Start(ctx, cfg.NumWorkers)

	docService := services.NewDocumentService(dbClient, objClient, processor, cfg.BucketName)

	server := NewServer(cfg, docService, processor, provider)

	return &App{
		DBClient:     dbClient,
		ObjectClient: objClient,
		Provider:     provider,
		Processor:    processor,
		Server:       server,
	}, nil
}

func (a *App) Close() {
	if a.Processor != nil {
		_ = a.Processor.Wait()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
