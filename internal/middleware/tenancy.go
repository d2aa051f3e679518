package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/notedesk/notedesk/internal/metrics"
	"github.com/notedesk/notedesk/internal/tenancy"
)

// TenancyConfig holds dependencies of the tenancy middleware.
type TenancyConfig struct {
	Logger   *slog.Logger
	Resolver *tenancy.Resolver
	Metrics  metrics.Recorder
}

// InitializeTenancyByDomain resolves the tenant from the request host and
// binds it to the request context. Unknown hosts are rejected with 404
// before any tenant-scoped handler runs.
func InitializeTenancyByDomain(cfg TenancyConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Resolver.IsCentral(r.Host) {
				recorder.IncTenantResolution(metrics.ResolutionCentral)
				writeTenantNotFound(w)
				return
			}

			t, err := cfg.Resolver.Resolve(r.Context(), r.Host)
			if err != nil {
				if errors.Is(err, tenancy.ErrTenantNotFound) {
					recorder.IncTenantResolution(metrics.ResolutionMiss)
					cfg.Logger.Warn("tenant not found",
						slog.String("host", r.Host),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					writeTenantNotFound(w)
					return
				}

				recorder.IncTenantResolution(metrics.ResolutionError)
				cfg.Logger.Error("tenant resolution failed",
					slog.String("host", r.Host),
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
				return
			}

			recorder.IncTenantResolution(metrics.ResolutionHit)
			annotate(r.Context(), "tenant_id", t.ID)

			ctx := tenancy.WithTenant(r.Context(), t)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PreventAccessFromCentralDomains rejects tenant routes reached through a
// central host.
func PreventAccessFromCentralDomains(resolver *tenancy.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if resolver.IsCentral(r.Host) {
				writeTenantNotFound(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CentralOnly rejects central routes reached through a tenant host.
func CentralOnly(resolver *tenancy.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !resolver.IsCentral(r.Host) {
				writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeTenantNotFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "TENANT_NOT_FOUND", "Tenant could not be identified on this domain")
}
