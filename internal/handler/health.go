package handler

import (
	"context"
	"net/http"
	"time"
)

const readinessTimeout = 3 * time.Second

// HealthChecker defines an interface for checking service health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	checks map[string]HealthChecker
}

// NewHealthHandler creates a HealthHandler for Postgres and Redis.
// A nil checker is reported as "not configured".
func NewHealthHandler(db, cache HealthChecker) *HealthHandler {
	return &HealthHandler{checks: map[string]HealthChecker{
		"postgres": db,
		"redis":    cache,
	}}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz is the liveness probe. It never touches dependencies.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz is the readiness probe: 200 only if every dependency answers.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	status := http.StatusOK

	for name, checker := range h.checks {
		if checker == nil {
			resp.Checks[name] = "not configured"
			continue
		}
		if err := checker.Ping(ctx); err != nil {
			resp.Checks[name] = "error: " + err.Error()
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	writeJSON(w, status, resp)
}
