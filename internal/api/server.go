// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	handlerapi "github.com/newthinker/holdings/internal/api/handler/api"
	"github.com/newthinker/holdings/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP server for the holdings API
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	router     *chi.Mux
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	AllowedOrigins []string
	MetricsPath    string // empty disables the metrics endpoint
}

// Dependencies holds the services the routes are served from.
type Dependencies struct {
	Views   handlerapi.Views
	Metrics *metrics.Registry // optional
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.Views == nil {
		return nil, fmt.Errorf("analytics views are required")
	}

	router := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		router: router,
	}

	s.setupMiddleware(cfg, deps)
	s.setupRoutes(cfg, deps)

	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware(cfg Config, deps Dependencies) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(metrics.LoggingMiddleware(s.logger))
	if deps.Metrics != nil {
		s.router.Use(metrics.HTTPMiddleware(deps.Metrics))
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", metrics.RequestIDHeader},
		ExposedHeaders: []string{metrics.RequestIDHeader},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) {
	s.router.Get("/api/health", s.handleHealth)

	if deps.Metrics != nil && cfg.MetricsPath != "" {
		s.router.Handle(cfg.MetricsPath, promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	h := handlerapi.NewAnalyticsHandler(deps.Views)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/quarters", h.Quarters)
		r.Get("/momentum", h.Momentum)
		r.Get("/exits", h.Exits)
		r.Get("/discoveries", h.Discoveries)
		r.Get("/balance", h.Balance)
		r.Route("/sectors", func(r chi.Router) {
			r.Get("/flows", h.SectorFlows)
			r.Get("/top", h.TopSectors)
		})
		r.Get("/concentration", h.Concentration)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
