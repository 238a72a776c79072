package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/transferhub/internal/adapter/http/handler"
	"github.com/iho/transferhub/internal/adapter/http/middleware"
	"github.com/iho/transferhub/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	TransferHandler       *handler.TransferHandler
	LedgerHandler         *handler.LedgerHandler
	PayrollHandler        *handler.PayrollHandler
	CustomerHandler       *handler.CustomerHandler
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler

	Idempotency *middleware.IdempotencyMiddleware
	RateLimiter *middleware.RateLimiter
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	Logger      zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.Idempotency != nil {
			r.Use(cfg.Idempotency.Wrap)
		}

		r.Route("/transfers", func(r chi.Router) {
			r.Post("/debit", cfg.TransferHandler.Debit)
			r.Post("/refund", cfg.TransferHandler.Refund)
		})

		r.Route("/ledger", func(r chi.Router) {
			r.Get("/", cfg.LedgerHandler.List)
			r.Get("/{id}", cfg.LedgerHandler.Get)
			r.Post("/{id}/refund", cfg.LedgerHandler.Refund)
		})

		r.Post("/payroll/cycles/{id}/post", cfg.PayrollHandler.Post)

		r.Route("/customers/{id}", func(r chi.Router) {
			r.Get("/", cfg.CustomerHandler.Overview)
			r.Get("/accounts", cfg.CustomerHandler.Accounts)
			r.Get("/status", cfg.CustomerHandler.Status)
		})
		r.Get("/accounts/{account}/statement", cfg.CustomerHandler.Statement)

		r.Route("/reconciliation/cases", func(r chi.Router) {
			r.Get("/", cfg.ReconciliationHandler.List)
			r.Get("/{id}", cfg.ReconciliationHandler.Get)
			r.Post("/{id}/resolve", cfg.ReconciliationHandler.Resolve)
		})
	})

	return r
}
