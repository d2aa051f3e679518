package handler

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/notedesk/notedesk/internal/metrics"
	"github.com/notedesk/notedesk/internal/middleware"
	"github.com/notedesk/notedesk/internal/model"
	"github.com/notedesk/notedesk/internal/tenancy"
)

// RouterConfig wires handlers and middleware into the API router.
type RouterConfig struct {
	Logger   *slog.Logger
	Resolver *tenancy.Resolver
	Metrics  metrics.Recorder
	// MetricsHandler serves GET /metrics when set.
	MetricsHandler http.Handler

	Health  *HealthHandler
	Central *CentralHandler
	Auth    *AuthHandler
	Notes   *NoteHandler

	Authenticator  middleware.TokenAuthenticator
	MinAuthFailure time.Duration
	LoginRateLimit middleware.RateLimitConfig

	// TrustedProxies may set the client address through forwarding headers.
	TrustedProxies []netip.Prefix

	CORS        middleware.CORSConfig
	Security    middleware.SecurityConfig
	MaxBodySize int64
}

// NewRouter builds the chi router. Central routes answer only on central
// hosts; tenant routes resolve the tenant from the host first.
func NewRouter(cfg RouterConfig) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	h := New()

	r := chi.NewRouter()
	r.Use(middleware.TrustedRealIP(cfg.TrustedProxies))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Metrics(recorder))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.MaxBodySize(cfg.MaxBodySize))

	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.CentralOnly(cfg.Resolver))
		r.Get("/tenants", cfg.Central.ListTenants)
		r.Post("/register-company", cfg.Central.RegisterCompany)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.PreventAccessFromCentralDomains(cfg.Resolver))
		r.Use(middleware.InitializeTenancyByDomain(middleware.TenancyConfig{
			Logger:   cfg.Logger,
			Resolver: cfg.Resolver,
			Metrics:  recorder,
		}))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitLogin(cfg.LoginRateLimit))
			r.Post("/login", cfg.Auth.Login)
			r.Post("/register", cfg.Auth.Register)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(middleware.AuthConfig{
				Logger:             cfg.Logger,
				Authenticator:      cfg.Authenticator,
				MinFailureDuration: cfg.MinAuthFailure,
			}))

			r.Get("/user", cfg.Auth.Me)
			r.Post("/logout", cfg.Auth.Logout)

			r.Route("/notes", func(r chi.Router) {
				r.With(middleware.RequireAbility(model.AbilityNotesRead)).Get("/", cfg.Notes.List)
				r.With(middleware.RequireAbility(model.AbilityNotesRead)).Get("/{id}", cfg.Notes.Get)
				r.With(middleware.RequireAbility(model.AbilityNotesWrite)).Post("/", cfg.Notes.Create)
				r.With(middleware.RequireAbility(model.AbilityNotesWrite)).Put("/{id}", cfg.Notes.Update)
				r.With(middleware.RequireAbility(model.AbilityNotesWrite)).Delete("/{id}", cfg.Notes.Delete)
			})
		})
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
