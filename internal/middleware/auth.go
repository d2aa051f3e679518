package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/notedesk/notedesk/internal/auth"
	"github.com/notedesk/notedesk/internal/model"
	"github.com/notedesk/notedesk/internal/service"
)

// DefaultMinAuthFailure pads failed authentications so that the response
// time does not reveal how far verification got.
const DefaultMinAuthFailure = 200 * time.Millisecond

// TokenAuthenticator resolves a bearer token within the request tenant.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, plaintext string) (*model.AuthContext, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger        *slog.Logger
	Authenticator TokenAuthenticator
	// MinFailureDuration is the minimum time spent on a rejected request.
	MinFailureDuration time.Duration
}

// Auth returns a middleware that authenticates bearer tokens. It must run
// after InitializeTenancyByDomain: tokens are only valid in the tenant of
// their owner.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			token := BearerToken(r)
			if token == "" {
				cfg.fail(w, r, start, "missing_token")
				return
			}

			authCtx, err := cfg.Authenticator.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, service.ErrUnauthorized) {
					cfg.fail(w, r, start, "invalid_token")
					return
				}
				cfg.Logger.Error("authentication error",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
				return
			}

			cfg.Logger.Debug("authentication successful",
				slog.String("token_prefix", authCtx.TokenPrefix),
				slog.String("user_id", authCtx.UserID),
				slog.String("request_id", GetRequestID(r.Context())),
			)
			annotate(r.Context(), "user_id", authCtx.UserID)

			ctx := auth.ContextWithAuth(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (cfg AuthConfig) fail(w http.ResponseWriter, r *http.Request, start time.Time, reason string) {
	cfg.Logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)

	if elapsed := time.Since(start); elapsed < cfg.MinFailureDuration {
		time.Sleep(cfg.MinFailureDuration - elapsed)
	}
	writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthenticated.")
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
