package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rgoodwin/lexchunk/internal/config"
	"github.com/rgoodwin/lexchunk/internal/pipeline"
)

// Server is the HTTP API server for lexchunk.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.LexchunkAPIKey, s.log))

		r.Post("/api/upload", s.handleUpload)
		r.Post("/api/upload/batch", s.handleBatchUpload)
		r.Get("/api/jobs/{jobID}/status", s.handleJobStatus)
		r.Get("/api/stats/pipeline", s.handlePipelineStats)

		r.Get("/api/documents", s.handleListDocuments)
		r.Get("/api/documents/{docID}", s.handleGetDocument)
		r.Get("/api/documents/{docID}/blocks", s.handleGetBlocks)
		r.Get("/api/documents/{docID}/chunks", s.handleGetChunks)
		r.Get("/api/documents/{docID}/definitions", s.handleGetDefinitions)
		r.Get("/api/documents/{docID}/entitlements", s.handleGetEntitlements)
		r.Get("/api/documents/{docID}/exports/{name}", s.handleGetExport)
		r.Post("/api/documents/{docID}/blocks", s.handlePutBlocks)
		r.Post("/api/documents/{docID}/process", s.handleProcess)
		r.Post("/api/documents/{docID}/rechunk", s.handleProcess)
		r.Post("/api/documents/{docID}/reindex", s.handleReindex)
		r.Delete("/api/documents/{docID}", s.handleDeleteDocument)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
