package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/notedesk/notedesk/internal/auth"
	"github.com/notedesk/notedesk/internal/handler/dto"
	"github.com/notedesk/notedesk/internal/model"
	"github.com/notedesk/notedesk/internal/service"
)

// Notes is the note service as seen by the HTTP layer.
type Notes interface {
	List(ctx context.Context) ([]*model.Note, error)
	Create(ctx context.Context, userID string, input service.NoteInput) (*model.Note, error)
	Get(ctx context.Context, userID, id string) (*model.Note, error)
	Update(ctx context.Context, userID, id string, input service.NoteInput) (*model.Note, error)
	Delete(ctx context.Context, userID, id string) error
}

// NoteHandler handles HTTP requests for notes.
type NoteHandler struct {
	notes  Notes
	errors *Errors
	logger *slog.Logger
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(notes Notes, errs *Errors, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{notes: notes, errors: errs, logger: logger}
}

// List handles GET /notes.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.List(r.Context())
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToNoteListResponse(notes))
}

// Create handles POST /notes.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.NoteRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errors.BadJSON(w)
		return
	}

	note, err := h.notes.Create(r.Context(), auth.UserIDFromContext(r.Context()), service.NoteInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	h.logger.Info("note_created", "note_id", note.ID, "tenant_id", note.TenantID)
	writeJSON(w, http.StatusCreated, dto.ToNoteResponse(note))
}

// Get handles GET /notes/{id}.
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	note, err := h.notes.Get(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToNoteResponse(note))
}

// Update handles PUT /notes/{id}.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.NoteRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errors.BadJSON(w)
		return
	}

	note, err := h.notes.Update(r.Context(), auth.UserIDFromContext(r.Context()), chi.URLParam(r, "id"), service.NoteInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		h.errors.Write(w, r, err)
		return
	}

	h.logger.Info("note_updated", "note_id", note.ID, "tenant_id", note.TenantID)
	writeJSON(w, http.StatusOK, dto.ToNoteResponse(note))
}

// Delete handles DELETE /notes/{id}.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.notes.Delete(r.Context(), auth.UserIDFromContext(r.Context()), id); err != nil {
		h.errors.Write(w, r, err)
		return
	}

	h.logger.Info("note_deleted", "note_id", id)
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Note deleted successfully"})
}
