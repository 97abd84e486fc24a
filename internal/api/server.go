// Package api provides the HTTP API server for the gallery search engine.
package api

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"log/slog"

	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/auth"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/service"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/store"
	"github.com/PrivateGER/hydrus-nextbooru-sub001/internal/validation"
)

// Services groups the business services the API exposes.
type Services struct {
	Gallery   *service.GalleryService
	Facets    *service.FacetService
	Notes     *service.NoteSearchService
	Recommend *service.RecommendService
	Sync      *service.SyncService
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services  *Services
	store     store.Store
	tokens    *auth.TokenService
	router    *chi.Mux
	api       huma.API
	limiter   *RateLimiter
	validator *validation.Validator
	logger    *slog.Logger
}

// NewServer creates an HTTP server with all routes configured.
func NewServer(services *Services, st store.Store, tokens *auth.TokenService, logger *slog.Logger) *Server {
	s := &Server{
		services:  services,
		store:     st,
		tokens:    tokens,
		router:    chi.NewRouter(),
		limiter:   NewRateLimiter(60, time.Minute, 20),
		validator: validation.New(),
		logger:    logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Nextbooru API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerGalleryRoutes()
	s.registerNoteRoutes()
	s.registerAdminRoutes()
	s.registerMediaRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Stop releases server-held resources.
func (s *Server) Stop() {
	s.limiter.Stop()
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	s.router.Use(RateLimitMiddleware(s.limiter, s.logger))
}
