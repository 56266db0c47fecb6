package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/essaygest/internal/config"
	"github.com/dgallion1/essaygest/internal/history"
	"github.com/dgallion1/essaygest/internal/pipeline"
	"github.com/dgallion1/essaygest/internal/scoring"
)

// HistoryStore is the saved-analysis storage used by the history routes.
type HistoryStore interface {
	Save(ctx context.Context, rec history.Record) (history.Record, error)
	List(ctx context.Context, userID string) ([]history.Record, error)
	Get(ctx context.Context, id string) (history.Record, error)
	UpdateNotes(ctx context.Context, id, title, memo string) (history.Record, error)
	Delete(ctx context.Context, id string) error
}

// Deps are the collaborators behind the HTTP routes.
type Deps struct {
	Orchestrator *pipeline.Orchestrator
	Reader       *pipeline.Reader
	Scorer       *scoring.Scorer
	History      HistoryStore
}

// Server is the HTTP API server for essaygest.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	reader       *pipeline.Reader
	scorer       *scoring.Scorer
	history      HistoryStore
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(deps Deps, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: deps.Orchestrator,
		reader:       deps.Reader,
		scorer:       deps.Scorer,
		history:      deps.History,
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
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/ocr", s.handleOCR)
		r.Post("/api/reconstruct", s.handleReconstruct)

		r.Post("/api/analyze", s.handleAnalyze)
		r.Post("/api/enrich", s.handleEnrich)
		r.Post("/api/improve-sentences", s.handleImproveSentences)
		r.Get("/api/models", s.handleListModels)
		r.Get("/api/stats/llm", s.handleLLMStats)

		r.Post("/api/jobs", s.handleSubmitJob)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)

		r.Route("/api/history", func(r chi.Router) {
			r.Post("/", s.handleSaveHistory)
			r.Get("/", s.handleListHistory)
			r.Get("/{id}", s.handleGetHistory)
			r.Patch("/{id}", s.handleUpdateHistory)
			r.Delete("/{id}", s.handleDeleteHistory)
			r.Get("/{id}/report", s.handleHistoryReport)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
