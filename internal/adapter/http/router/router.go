// Package router assembles the HTTP surface on chi.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/mechinsul/leadform/internal/adapter/http/handler"
	"github.com/mechinsul/leadform/internal/adapter/http/middleware"
	"github.com/mechinsul/leadform/internal/infrastructure/metrics"
)

const requestTimeout = 30 * time.Second

// Deps is everything the router mounts
type Deps struct {
	Log     *zap.Logger
	Metrics *metrics.Metrics

	Leads *handler.LeadHandler
	Admin *handler.AdminHandler

	ContactLimiter middleware.UseCase
	QuoteLimiter   middleware.UseCase

	AllowedOrigins []string
	AdminTokenHash string
}

// New creates and configures the chi router with all middleware and routes
func New(deps Deps) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.AccessLog(deps.Log, deps.Metrics))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:         300,
	}))

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.Get("/health", handler.Health)
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		contact := middleware.NewRateLimiterMiddleware(deps.ContactLimiter, deps.Metrics, deps.Log)
		quote := middleware.NewRateLimiterMiddleware(deps.QuoteLimiter, deps.Metrics, deps.Log)

		r.With(contact.Handle).Post("/contact", deps.Leads.Contact)
		r.With(quote.Handle).Post("/quote", deps.Leads.Quote)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AdminAuth(deps.AdminTokenHash))
			deps.Admin.RegisterRoutes(r)
		})
	})

	return r
}
