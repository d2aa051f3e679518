package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/notedesk/notedesk/internal/activity"
	"github.com/notedesk/notedesk/internal/metrics"
	"github.com/notedesk/notedesk/internal/model"
	"github.com/notedesk/notedesk/internal/repository"
	"github.com/notedesk/notedesk/internal/tenancy"
)

// NoteService handles notes of the tenant bound to the request context.
// Reads span the whole tenant; writes are limited to the note owner.
type NoteService struct {
	notes     NoteStore
	publisher ActivityPublisher
	metrics   metrics.Recorder
	now       func() time.Time
}

// NewNoteService creates a NoteService.
func NewNoteService(notes NoteStore, publisher ActivityPublisher, recorder metrics.Recorder) *NoteService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &NoteService{
		notes:     notes,
		publisher: publisher,
		metrics:   recorder,
		now:       storedNow,
	}
}

// storedNow returns the current UTC time at the microsecond precision
// PostgreSQL keeps, so values returned to callers match what is read back.
func storedNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// NoteInput defines the editable fields of a note.
type NoteInput struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
}

func (in NoteInput) normalized() NoteInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	return in
}

// List returns every note of the current tenant, newest first.
func (s *NoteService) List(ctx context.Context) ([]*model.Note, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}

	notes, err := s.notes.ListNotes(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

// Create stores a note owned by userID in the current tenant.
func (s *NoteService) Create(ctx context.Context, userID string, input NoteInput) (*model.Note, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}

	input = input.normalized()
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := s.now().Truncate(time.Microsecond)
	note := &model.Note{
		ID:        ulid.Make().String(),
		TenantID:  t.ID,
		UserID:    userID,
		Title:     input.Title,
		Content:   input.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.notes.CreateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	s.metrics.IncNoteCreated()
	s.publish(activity.NoteCreated, note, now)
	return note, nil
}

// Get returns a note owned by userID. A note that is missing, in another
// tenant or owned by someone else is ErrNoteNotFound.
func (s *NoteService) Get(ctx context.Context, userID, id string) (*model.Note, error) {
	t, err := tenancy.Require(ctx)
	if err != nil {
		return nil, err
	}

	note, err := s.notes.GetNote(ctx, t.ID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	if !note.IsOwnedBy(userID) {
		return nil, ErrNoteNotFound
	}
	return note, nil
}

// Update replaces title and content of an owned note and advances
// updated_at. Ownership is checked before the input is validated.
func (s *NoteService) Update(ctx context.Context, userID, id string, input NoteInput) (*model.Note, error) {
	note, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	input = input.normalized()
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := s.now().Truncate(time.Microsecond)
	if !now.After(note.UpdatedAt) {
		now = note.UpdatedAt.Add(time.Microsecond)
	}

	note.Title = input.Title
	note.Content = input.Content
	note.UpdatedAt = now

	if err := s.notes.UpdateNote(ctx, note); err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	s.metrics.IncNoteUpdated()
	s.publish(activity.NoteUpdated, note, now)
	return note, nil
}

// Delete removes an owned note.
func (s *NoteService) Delete(ctx context.Context, userID, id string) error {
	note, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.notes.DeleteNote(ctx, note.TenantID, userID, note.ID); err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return ErrNoteNotFound
		}
		return fmt.Errorf("failed to delete note: %w", err)
	}

	s.metrics.IncNoteDeleted()
	s.publish(activity.NoteDeleted, note, s.now())
	return nil
}

func (s *NoteService) publish(eventType string, note *model.Note, at time.Time) {
	s.publisher.PublishAsync(activity.Event{
		Type:     eventType,
		TenantID: note.TenantID,
		UserID:   note.UserID,
		NoteID:   note.ID,
		At:       at.UnixMilli(),
	})
}
