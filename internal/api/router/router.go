package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wolfman30/monday-lead-relay/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/monday-lead-relay/internal/http/middleware"
	"github.com/wolfman30/monday-lead-relay/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	InfoHandler        *handlers.InfoHandler
	LeadsHandler       *handlers.LeadsHandler
	MondayHandler      *handlers.MondayHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	// RateLimiter guards the lead intake endpoints when set.
	RateLimiter       *httpmiddleware.RateLimiter
	EnableDiagnostics bool
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	if cfg.InfoHandler != nil {
		r.Get("/", cfg.InfoHandler.Root)
		r.Get("/health", cfg.InfoHandler.Health)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Lead intake
	if cfg.LeadsHandler != nil {
		r.Group(func(intake chi.Router) {
			if cfg.RateLimiter != nil {
				intake.Use(httpmiddleware.RateLimit(cfg.RateLimiter))
			}
			intake.Post("/webhook/cf7", cfg.LeadsHandler.CF7Webhook)
			intake.Post("/api/monday/create-lead", cfg.LeadsHandler.CreateLead)
		})
	}

	if cfg.MondayHandler != nil {
		r.Get("/api/monday/boards", cfg.MondayHandler.Boards)
		r.Get("/api/monday/board-info", cfg.MondayHandler.BoardInfo)
	}

	// Diagnostics reach monday.com with sample data; keep them off in production.
	if cfg.EnableDiagnostics {
		if cfg.LeadsHandler != nil {
			r.Post("/api/debug", cfg.LeadsHandler.Debug)
			r.Post("/api/test-failover", cfg.LeadsHandler.TestFailover)
		}
		if cfg.InfoHandler != nil {
			r.Get("/api/test-phone", cfg.InfoHandler.TestPhone)
		}
	}

	return r
}
