package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/deckreport/internal/config"
	"github.com/dgallion1/deckreport/internal/pipeline"
	"github.com/dgallion1/deckreport/internal/synth"
)

// LLMInfo exposes the model behind the pipeline for the stats endpoint.
type LLMInfo interface {
	Model() string
	Stats() *synth.LLMStats
}

// Server is the HTTP API server for deckreport.
type Server struct {
	router  chi.Router
	service *pipeline.Service
	llm     LLMInfo
	log     *slog.Logger
	cfg     config.Config
}

// NewServer creates and configures the HTTP server. llm may be nil.
func NewServer(svc *pipeline.Service, llm LLMInfo, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		service: svc,
		llm:     llm,
		log:     log,
		cfg:     cfg,
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

		r.Post("/api/sessions", s.handleCreateSession)
		r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)

			r.Get("/slides", s.handleListSlides)
			r.Get("/slides/{index}", s.handleGetSlide)
			r.Get("/slides/{index}/image", s.handleSlideImage)

			r.Post("/report", s.handleGenerateReport)
			r.Get("/report", s.handleDownloadReport)
		})

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
