// Package server provides the HTTP server and routing for the scenario desk.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/scenariodesk/internal/clients/engine"
	"github.com/aristath/scenariodesk/internal/config"
	"github.com/aristath/scenariodesk/internal/database"
	"github.com/aristath/scenariodesk/internal/metrics"
	"github.com/aristath/scenariodesk/internal/modules/desk"
	deskhandlers "github.com/aristath/scenariodesk/internal/modules/desk/handlers"
	"github.com/aristath/scenariodesk/internal/scheduler"
)

// EngineProbe is the part of the engine client the server inspects.
type EngineProbe interface {
	Status(ctx context.Context) (*engine.Status, error)
	BreakerState() string
}

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Sessions  *desk.Manager
	Engine    EngineProbe
	Scheduler *scheduler.Scheduler
	Metrics   *metrics.Registry
	CacheDB   *database.DB // nil when the response cache is disabled
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	sessions       *desk.Manager
	metrics        *metrics.Registry
	systemHandlers *SystemHandlers
	engineMonitor  *EngineMonitor
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	systemHandlers := NewSystemHandlers(cfg.Log, cfg.Engine, cfg.Scheduler, cfg.Sessions, cfg.CacheDB)

	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		cfg:            cfg.Config,
		sessions:       cfg.Sessions,
		metrics:        cfg.Metrics,
		systemHandlers: systemHandlers,
		engineMonitor:  NewEngineMonitor(cfg.Engine, cfg.Metrics, cfg.Log),
	}

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	// Engine calls can legitimately take close to ENGINE_TIMEOUT, so writes
	// get that plus headroom.
	writeTimeout := cfg.Config.EngineTimeout + 15*time.Second

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// SetJobs registers job instances for manual triggering via API
func (s *Server) SetJobs(jobs ...scheduler.Job) {
	s.systemHandlers.SetJobs(jobs...)
}

// Router exposes the configured router, used by tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		// Reference data
		r.Get("/sectors", s.handleSectors)
		r.Get("/templates", s.handleTemplates)

		// System monitoring and operations
		r.Route("/system", func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))
			r.Get("/status", s.systemHandlers.HandleSystemStatus)
			r.Get("/jobs", s.systemHandlers.HandleJobsStatus)
			r.Post("/jobs/{name}", s.systemHandlers.HandleTriggerJob)
		})

		// Sessions. No request timeout here: engine calls are bounded by the
		// engine client and the event stream is long-lived.
		sessionHandlers := deskhandlers.NewHandler(s.sessions, s.cfg.AllowedOrigins, s.log)
		sessionHandlers.RegisterRoutes(r)
	})
}

// Start starts the HTTP server and background monitors
func (s *Server) Start() error {
	s.engineMonitor.Start(60 * time.Second)
	s.log.Info().Msg("Engine monitor started")

	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	s.engineMonitor.Stop()
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
