package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huc-edu/insight-engine/internal/config"
	db "github.com/huc-edu/insight-engine/internal/core/database"
	"github.com/huc-edu/insight-engine/internal/core/drive"
	"github.com/huc-edu/insight-engine/internal/core/extract"
	"github.com/huc-edu/insight-engine/internal/core/flasher"
	"github.com/huc-edu/insight-engine/internal/core/ingest"
	"github.com/huc-edu/insight-engine/internal/core/llm"
	"github.com/huc-edu/insight-engine/internal/core/objectstore"
	"github.com/huc-edu/insight-engine/internal/core/rag"
	"github.com/huc-edu/insight-engine/internal/core/sharepoint"
	"github.com/huc-edu/insight-engine/internal/core/watch"
)

// App holds every long-lived component and owns their lifecycles.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	dbClient *db.DatabaseClient
	embedder *llm.GeminiEmbedder
	genAI    *llm.GeminiLLM
	watcher  *watch.Watcher
	server   *Server

	cancel context.CancelFunc
}

// NewApp constructs the full dependency graph from configuration.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := newLogger(cfg.LogLevel)

	dbClient, err := db.NewDatabaseClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	embedder, err := llm.NewGeminiEmbedder(ctx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		dbClient.Close()
		return nil, err
	}

	genAI, err := llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		embedder.Close()
		dbClient.Close()
		return nil, err
	}

	extractor := extract.NewFileExtractor()
	engine := rag.NewEngine(dbClient, embedder, genAI, cfg.SearchTopK)

	pipelineCfg := &ingest.Config{
		ChunkSize:       cfg.ChunkSize,
		ChunkOverlap:    cfg.ChunkOverlap,
		SummaryMaxChars: cfg.SummaryMaxChars,
	}
	pipeline := ingest.NewPipeline(dbClient, embedder, extractor, engine, pipelineCfg, logger)

	// Archiving to S3 is optional. Without credentials the pipeline keeps
	// files on local disk only.
	if cfg.AwsAccessKey != "" && cfg.AwsSecretKey != "" {
		s3Client, err := objectstore.NewS3Client(ctx, cfg)
		if err != nil {
			logger.Warn("object storage unavailable, archiving disabled", "error", err)
		} else {
			pipeline.WithArchiver(s3Client, cfg.BucketName)
		}
	}

	// Background workers outlive any single request but stop with the app.
	appCtx, cancel := context.WithCancel(ctx)

	manager := ingest.NewManager(appCtx, pipeline, logger)
	watcher := watch.New(cfg.WatchDir, manager, logger)

	driveClient := drive.NewClient(cfg.DriveCredentialsPath, cfg.DriveTokenPath)

	var scraper *sharepoint.Scraper
	if cfg.SharePointSiteURL != "" {
		scraper = sharepoint.NewScraper(cfg.SharePointSiteURL, cfg.SharePointCookie)
	}
	syncJob := sharepoint.NewSyncJob(scraper, manager, filepath.Join(cfg.ArchiveDir, "sharepoint"), logger)

	flasherStore := flasher.NewStore(cfg.FlasherPath)

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		cancel()
		genAI.Close()
		embedder.Close()
		dbClient.Close()
		return nil, err
	}

	server := NewServer(appCtx, cfg, dbClient, engine, manager, syncJob, driveClient, flasherStore, logger)

	return &App{
		cfg:      cfg,
		logger:   logger,
		dbClient: dbClient,
		embedder: embedder,
		genAI:    genAI,
		watcher:  watcher,
		server:   server,
		cancel:   cancel,
	}, nil
}

// Start launches the folder watcher and the HTTP server. It blocks until
// the server stops.
func (a *App) Start() error {
	if err := a.watcher.Start(); err != nil {
		return err
	}
	a.server.Start()
	return nil
}

// Close shuts everything down in reverse dependency order.
func (a *App) Close() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown", "error", err)
	}
	a.watcher.Stop()
	a.cancel()

	a.genAI.Close()
	a.embedder.Close()
	a.dbClient.Close()
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
