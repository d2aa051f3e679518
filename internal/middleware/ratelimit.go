package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/notedesk/notedesk/internal/cache"
	"github.com/notedesk/notedesk/internal/metrics"
	"github.com/notedesk/notedesk/internal/tenancy"
)

// LoginLimiter consumes one login attempt for a client within a tenant.
type LoginLimiter interface {
	CheckLoginRateLimit(ctx context.Context, tenantID, ip string, ratePerMinute, burst int) (*cache.RateLimitResult, error)
}

// RateLimitConfig holds configuration for the login rate limiter.
type RateLimitConfig struct {
	Logger    *slog.Logger
	Limiter   LoginLimiter
	Metrics   metrics.Recorder
	Enabled   bool
	PerMinute int
	Burst     int
}

// RateLimitLogin limits credential attempts per tenant and client IP.
// Must be applied after InitializeTenancyByDomain.
func RateLimitLogin(cfg RateLimitConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			tenantID := tenancy.IDFromContext(r.Context())
			if tenantID == "" {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			result, err := cfg.Limiter.CheckLoginRateLimit(r.Context(), tenantID, ip, cfg.PerMinute, cfg.Burst)
			if err != nil {
				cfg.Logger.Error("rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("tenant_id", tenantID),
				)
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, cfg.PerMinute, result.Remaining, result.ResetAt)

			if !result.Allowed {
				recorder.IncLogin(metrics.LoginRateLimited)
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("tenant_id", tenantID),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int64("retry_after_seconds", int64(result.RetryAfter.Seconds())),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
				writeError(w, http.StatusTooManyRequests, "RATE_LIMITED",
					fmt.Sprintf("Too many login attempts. Retry after %d seconds.", int(result.RetryAfter.Seconds())))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func setRateLimitHeaders(w http.ResponseWriter, limit int, remaining int64, resetAt time.Time) {
	if limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
	}
}

// clientIP returns the peer address without port. Forwarding headers are
// honoured only through TrustedRealIP, which rewrites RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
