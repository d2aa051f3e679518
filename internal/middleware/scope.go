package middleware

import (
	"net/http"

	"github.com/notedesk/notedesk/internal/auth"
)

// RequireAbility returns middleware that enforces token abilities.
// Must be applied after Auth. Having ANY of the listed abilities is enough.
func RequireAbility(required ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := auth.FromContext(r.Context())
			if authCtx == nil {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthenticated.")
				return
			}

			for _, ability := range required {
				if authCtx.Can(ability) {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeError(w, http.StatusForbidden, "FORBIDDEN", "This token cannot perform "+required[0]+".")
		})
	}
}
