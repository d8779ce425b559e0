// Package api provides the HTTP API server and handlers for the movie dashboard.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/listenupapp/moviescope/internal/color"
	"github.com/listenupapp/moviescope/internal/ratelimit"
	"github.com/listenupapp/moviescope/internal/selection"
	"github.com/listenupapp/moviescope/internal/service"
	"github.com/listenupapp/moviescope/internal/sse"
	"github.com/listenupapp/moviescope/internal/store"
	"github.com/listenupapp/moviescope/internal/view"
)

// Services groups the service layer the handlers call into.
type Services struct {
	Dashboard *service.Dashboard
	Search    *service.SearchService
	Dataset   *service.DatasetService
}

// Options configures the HTTP surface.
type Options struct {
	Title          string
	Version        string
	AllowedOrigins []string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store      *store.Store
	selection  *selection.State
	views      *view.Registry
	palette    *color.Palette
	services   *Services
	sseManager *sse.Manager
	sseHandler *sse.Handler
	limiter    *ratelimit.KeyedRateLimiter
	router     *chi.Mux
	api        huma.API
	logger     *slog.Logger
}

// Deps are the shared components the server reads from.
type Deps struct {
	Store      *store.Store
	Selection  *selection.State
	Views      *view.Registry
	Palette    *color.Palette
	Services   *Services
	SSEManager *sse.Manager
	Limiter    *ratelimit.KeyedRateLimiter
	Logger     *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(deps Deps, opts Options) *Server {
	if opts.Title == "" {
		opts.Title = "MovieScope API"
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}

	s := &Server{
		store:      deps.Store,
		selection:  deps.Selection,
		views:      deps.Views,
		palette:    deps.Palette,
		services:   deps.Services,
		sseManager: deps.SSEManager,
		limiter:    deps.Limiter,
		router:     chi.NewRouter(),
		logger:     deps.Logger,
	}
	if s.palette == nil {
		s.palette = color.Default()
	}
	if deps.SSEManager != nil {
		s.sseHandler = sse.NewHandler(deps.SSEManager, deps.Logger)
	}

	s.setupMiddleware(opts)

	humaConfig := huma.DefaultConfig(opts.Title, opts.Version)
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Retry-After", "X-Request-Id"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerMovieRoutes()
	s.registerSelectionRoutes()
	s.registerViewRoutes()
	s.registerSearchRoutes()
	s.registerDatasetRoutes()

	// The stream is plain net/http; huma does not model SSE bodies.
	if s.sseHandler != nil {
		s.router.Get("/api/v1/stream", s.sseHandler.ServeHTTP)
	}
}

// gestureOperation fills the fields shared by every gesture endpoint.
func (s *Server) gestureOperation(op huma.Operation) huma.Operation {
	op.Middlewares = append(op.Middlewares, s.gestureLimit)
	op.Errors = append(op.Errors, http.StatusTooManyRequests)
	return op
}
