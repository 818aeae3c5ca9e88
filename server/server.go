// Package server provides HTTP server management and lifecycle handling for
// the instructions API. It includes server setup, middleware configuration,
// route management, and graceful shutdown with proper error handling and
// logging.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mediscript/instructions-api/config"
	"github.com/mediscript/instructions-api/interfaces"
	"github.com/mediscript/instructions-api/logging"
	"github.com/mediscript/instructions-api/metrics"
)

// Server represents the HTTP server
type Server struct {
	server  *http.Server
	router  chi.Router
	handler interfaces.HTTPHandler
	config  *config.Config
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, handler interfaces.HTTPHandler) *Server {
	router := chi.NewRouter()

	server := &Server{
		server: &http.Server{
			Handler:      router,
			Addr:         cfg.Address + ":" + cfg.Port,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:  router,
		handler: handler,
		config:  cfg,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.LoggingMiddleware(logging.DefaultLoggingService.Logger))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(RateLimitHandler)
	s.router.Use(metrics.Metrics)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	RegisterRoutes(s.router, s.handler)
	s.router.Handle("/metrics", promhttp.Handler())
}

// RegisterRoutes wires the REST surface onto the router. Split out so
// handler tests can mount the same routes on a bare router.
func RegisterRoutes(r chi.Router, h interfaces.HTTPHandler) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)

		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Post("/restore", h.RestoreSession)

			r.Put("/patient", h.SetPatient)
			r.Get("/patient", h.GetPatient)

			r.Post("/tabs", h.AddTab)
			r.Route("/tabs/{tabID}", func(r chi.Router) {
				r.Delete("/", h.DeleteTab)
				r.Post("/activate", h.ActivateTab)
				r.Patch("/fields", h.EditField)
				r.Post("/fields/{field}/clear", h.ClearField)
				r.Put("/text/english", h.EditEnglishText)
				r.Put("/text/translated", h.EditTranslatedText)
				r.Put("/language", h.SetLanguage)
				r.Post("/finalize", h.FinalizeTab)
			})
		})
	})

	r.Get("/catalog/suggest/{prefix}", h.SuggestMedications)
	r.Get("/vocabulary/{category}/{term}", h.LookupTerm)
	r.Get("/health", h.HealthCheck)
}

// Start starts the server
func (s *Server) Start() error {
	logging.Info(fmt.Sprintf("Starting server at: %s:%s", s.config.Address, s.config.Port))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		// If graceful shutdown fails, force close
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}
