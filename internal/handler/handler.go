// Package handler provides the HTTP handlers of the notes API.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/notedesk/notedesk/internal/handler/dto"
	"github.com/notedesk/notedesk/internal/service"
	"github.com/notedesk/notedesk/internal/tenancy"
)

var errEmptyBody = errors.New("request body is empty")

// Handler serves router-level fallbacks.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Not found", Code: "NOT_FOUND"})
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, dto.ErrorResponse{Error: "Method not allowed", Code: "METHOD_NOT_ALLOWED"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

// Errors maps service errors to HTTP responses.
type Errors struct {
	logger *slog.Logger
	// exposeDetails adds the internal error text to 500 responses.
	exposeDetails bool
}

// NewErrors creates an error mapper. Details of internal errors are only
// returned when exposeDetails is set, which is never the case in production.
func NewErrors(logger *slog.Logger, exposeDetails bool) *Errors {
	return &Errors{logger: logger, exposeDetails: exposeDetails}
}

// BadJSON writes a 400 for an undecodable request body.
func (e *Errors) BadJSON(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
		Error: "Invalid request body",
		Code:  "INVALID_JSON",
	})
}

// Write translates err into the error envelope.
func (e *Errors) Write(w http.ResponseWriter, r *http.Request, err error) {
	var validation *service.ValidationError
	var conflict *service.ConflictError

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{
			Error:  "The given data was invalid.",
			Code:   "VALIDATION_FAILED",
			Errors: validation.Fields,
		})
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusUnprocessableEntity, dto.ErrorResponse{
			Error:  conflict.Message,
			Code:   "CONFLICT",
			Errors: conflict.Fields(),
		})
	case errors.Is(err, tenancy.ErrTenantNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{
			Error: "Tenant could not be identified on this domain",
			Code:  "TENANT_NOT_FOUND",
		})
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{
			Error: "The provided credentials are incorrect.",
			Code:  "UNAUTHORIZED",
		})
	case errors.Is(err, service.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{
			Error: "Unauthenticated.",
			Code:  "UNAUTHORIZED",
		})
	case errors.Is(err, service.ErrNoteNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{
			Error: "Not found",
			Code:  "NOT_FOUND",
		})
	default:
		e.logger.Error("internal_error",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"tenant_id", tenancy.IDFromContext(r.Context()),
		)
		resp := dto.ErrorResponse{
			Error: "An internal error occurred",
			Code:  "INTERNAL_ERROR",
		}
		if e.exposeDetails {
			resp.Detail = err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, resp)
	}
}
