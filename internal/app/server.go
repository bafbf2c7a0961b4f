package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/huc-edu/insight-engine/internal/api/handlers"
	appMiddleware "github.com/huc-edu/insight-engine/internal/api/middlewares"
	"github.com/huc-edu/insight-engine/internal/config"
	"github.com/huc-edu/insight-engine/internal/core"
	"github.com/huc-edu/insight-engine/internal/core/drive"
	"github.com/huc-edu/insight-engine/internal/core/flasher"
	"github.com/huc-edu/insight-engine/internal/core/ingest"
	"github.com/huc-edu/insight-engine/internal/core/rag"
	"github.com/huc-edu/insight-engine/internal/core/sharepoint"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds and wires all routes.
func NewServer(
	appCtx context.Context,
	cfg *config.Config,
	dbc core.DbClient,
	engine *rag.Engine,
	manager *ingest.Manager,
	syncJob *sharepoint.SyncJob,
	driveClient *drive.Client,
	flasherStore *flasher.Store,
	logger *slog.Logger,
) *Server {
	authHandler := handlers.NewAuthHandler(dbc, cfg.JWTSecret)
	uploadHandler := handlers.NewUploadHandler(manager, cfg.UploadDir)
	statusHandler := handlers.NewStatusHandler(manager)
	docHandler := handlers.NewDocumentHandler(dbc)
	searchHandler := handlers.NewSearchHandler(engine)
	dashboardHandler := handlers.NewDashboardHandler(engine)
	studioHandler := handlers.NewStudioHandler(engine)
	notebookHandler := handlers.NewNotebookHandler(engine)
	syncHandler := handlers.NewSyncHandler(appCtx, syncJob)
	driveHandler := handlers.NewDriveHandler(driveClient, manager, cfg.ArchiveDir)
	folderHandler := handlers.NewFolderHandler(dbc)
	configHandler := handlers.NewConfigHandler(syncJob, cfg.SharePointCookie, flasherStore)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(api chi.Router) {
		// public endpoints
		api.Post("/auth/signup", authHandler.Signup)
		api.Post("/auth/login", authHandler.Login)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWT(cfg.JWTSecret))

			protected.Post("/config/upload", uploadHandler.Upload)
			protected.Post("/config/sharepoint-url", configHandler.UpdateSharePointURL)
			protected.Get("/config/flasher", configHandler.GetFlasher)
			protected.Post("/config/flasher", configHandler.SetFlasher)

			protected.Get("/ingestion/status", statusHandler.Status)

			protected.Get("/documents", docHandler.List)
			protected.Get("/documents/{id}", docHandler.Get)

			protected.Get("/search", searchHandler.Search)
			protected.Post("/search/chat", searchHandler.Chat)

			protected.Get("/dashboard/stats", dashboardHandler.Stats)

			protected.Post("/studio/podcast", studioHandler.Podcast)
			protected.Post("/studio/mindmap", studioHandler.MindMap)
			protected.Post("/studio/quiz", studioHandler.Quiz)

			protected.Post("/notebook/deep-report", notebookHandler.DeepReport)

			protected.Post("/sync/start", syncHandler.Start)
			protected.Get("/sync/status", syncHandler.Status)

			protected.Get("/drive/auth/status", driveHandler.AuthStatus)
			protected.Post("/drive/auth/login", driveHandler.Login)
			protected.Get("/drive/files", driveHandler.ListFiles)
			protected.Post("/drive/ingest", driveHandler.Ingest)

			protected.Get("/folders/{category}", folderHandler.List)
			protected.Post("/folders", folderHandler.Create)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv, logger: logger}
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("server error", "error", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
