package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/iho/cashbook/internal/adapter/http/handler"
	"github.com/iho/cashbook/internal/adapter/http/middleware"
	"github.com/iho/cashbook/internal/infrastructure/metrics"
	"github.com/iho/cashbook/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	FinanceHandler    *handler.FinanceHandler
	EntryHandler      *handler.EntryHandler
	SettlementHandler *handler.SettlementHandler
	InvoiceHandler    *handler.InvoiceHandler
	HealthHandler     *handler.HealthHandler

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter

	Logger zerolog.Logger
	// Metrics and MetricsHandler are optional.
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler

	CORSAllowedOrigins []string
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", middleware.IdempotencyKeyHeader},
			ExposedHeaders: []string{middleware.IdempotencyReplayHeader},
			MaxAge:         300,
		}))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.IdempotencyStore != nil {
			idempotency := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotency.Wrap)
		}

		r.Route("/finance", func(r chi.Router) {
			r.Get("/dashboard", cfg.FinanceHandler.Dashboard)
			r.Get("/summary", cfg.FinanceHandler.Summary)
			r.Get("/delinquency", cfg.FinanceHandler.Delinquency)
			r.Get("/statement", cfg.FinanceHandler.Statement)
		})

		r.Route("/entries", func(r chi.Router) {
			r.Post("/", cfg.EntryHandler.Create)
			r.Get("/", cfg.EntryHandler.List)
			r.Delete("/{id}", cfg.EntryHandler.Delete)
		})

		r.Route("/settlements", func(r chi.Router) {
			r.Post("/", cfg.SettlementHandler.Submit)
			r.Post("/quote", cfg.SettlementHandler.Quote)
			r.Get("/status", cfg.SettlementHandler.Status)
		})

		r.Post("/invoices/recurring", cfg.InvoiceHandler.Trigger)
	})

	return r
}
