package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/pocketledger/internal/adapter/http/handler"
	"github.com/iho/pocketledger/internal/adapter/http/middleware"
	"github.com/iho/pocketledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	WalletHandler      *handler.WalletHandler
	CategoryHandler    *handler.CategoryHandler
	TransactionHandler *handler.TransactionHandler
	LoanHandler        *handler.LoanHandler
	LedgerHandler      *handler.LedgerHandler
	AuthHandler        *handler.AuthHandler
	HealthHandler      *handler.HealthHandler

	// TokenVerifier authenticates /api/v1. When nil the owner is taken
	// from the X-User-ID header.
	TokenVerifier    middleware.TokenVerifier
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	Logger           zerolog.Logger
	// MetricsHandler serves /metrics. Defaults to the global Prometheus registry.
	MetricsHandler http.Handler
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	authenticate := middleware.TrustOwnerHeader
	if cfg.TokenVerifier != nil {
		authenticate = middleware.Authenticate(cfg.TokenVerifier)
	}

	limit := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimiter != nil {
		limit = cfg.RateLimiter.Limit
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// anonymous auth endpoints are limited per client IP
		r.Route("/auth", func(r chi.Router) {
			r.With(limit).Post("/register", cfg.AuthHandler.Register)
			r.With(limit).Post("/login", cfg.AuthHandler.Login)
			r.With(authenticate, limit).Get("/me", cfg.AuthHandler.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(limit)

			// Idempotency is scoped per owner, so it runs after authentication
			if cfg.IdempotencyStore != nil {
				idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
				r.Use(idempotencyMiddleware.Wrap)
			}

			r.Route("/wallets", func(r chi.Router) {
				r.Post("/", cfg.WalletHandler.Create)
				r.Get("/", cfg.WalletHandler.List)
				r.Get("/{id}", cfg.WalletHandler.Get)
				r.Post("/{id}/archive", cfg.WalletHandler.Archive)
				r.Get("/{id}/reconcile", cfg.LedgerHandler.ReconcileWallet)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Post("/", cfg.CategoryHandler.Create)
				r.Get("/", cfg.CategoryHandler.List)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Post("/", cfg.TransactionHandler.Create)
				r.Get("/", cfg.TransactionHandler.List)
				r.Get("/{id}", cfg.TransactionHandler.Get)
				r.Delete("/{id}", cfg.TransactionHandler.Delete)
			})

			r.Route("/loans", func(r chi.Router) {
				r.Post("/", cfg.LoanHandler.Create)
				r.Get("/", cfg.LoanHandler.List)
				r.Get("/stats", cfg.LoanHandler.Stats)
				r.Get("/{id}", cfg.LoanHandler.Get)
				r.Delete("/{id}", cfg.LoanHandler.Delete)
				r.Post("/{id}/payments", cfg.LoanHandler.CreatePayment)
				r.Get("/{id}/payments", cfg.LoanHandler.ListPayments)
			})

			r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
		})
	})

	return r
}
