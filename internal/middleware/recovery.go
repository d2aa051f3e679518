package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recoverer turns a handler panic into a 500 JSON error. The log entry
// carries the tenant and user resolved before the panic, if any.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				attrs := []any{
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("host", r.Host),
					slog.Any("panic", rvr),
				}
				for _, a := range annotations(r.Context()) {
					attrs = append(attrs, a)
				}
				attrs = append(attrs, slog.String("stack", string(debug.Stack())))
				logger.Error("panic recovered", attrs...)

				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
