package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/notedesk/notedesk/internal/model"
)

const noteColumns = `
	n.id, n.tenant_id, n.user_id, n.title, n.content, n.created_at, n.updated_at,
	u.id, u.name
`

// ListNotes returns all notes of a tenant with their authors, newest first.
func (r *Repository) ListNotes(ctx context.Context, tenantID string) ([]*model.Note, error) {
	query := `
		SELECT ` + noteColumns + `
		FROM notes n
		JOIN users u ON u.id = n.user_id AND u.tenant_id = n.tenant_id
		WHERE n.tenant_id = $1
		ORDER BY n.created_at DESC, n.id DESC
	`

	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := make([]*model.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %w", err)
	}

	return notes, nil
}

// GetNote retrieves a note of the given tenant.
func (r *Repository) GetNote(ctx context.Context, tenantID, id string) (*model.Note, error) {
	query := `
		SELECT ` + noteColumns + `
		FROM notes n
		JOIN users u ON u.id = n.user_id AND u.tenant_id = n.tenant_id
		WHERE n.tenant_id = $1 AND n.id = $2
	`
	return scanNote(r.pool.QueryRow(ctx, query, tenantID, id))
}

// CreateNote inserts a note. The (user_id, tenant_id) foreign key rejects
// an author from another tenant.
func (r *Repository) CreateNote(ctx context.Context, note *model.Note) error {
	query := `
		INSERT INTO notes (id, tenant_id, user_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		note.ID,
		note.TenantID,
		note.UserID,
		note.Title,
		note.Content,
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

// UpdateNote writes title, content and updated_at of a note owned by
// note.UserID within note.TenantID.
func (r *Repository) UpdateNote(ctx context.Context, note *model.Note) error {
	query := `
		UPDATE notes
		SET title = $4, content = $5, updated_at = $6
		WHERE tenant_id = $1 AND id = $2 AND user_id = $3
	`

	result, err := r.pool.Exec(ctx, query,
		note.TenantID,
		note.ID,
		note.UserID,
		note.Title,
		note.Content,
		note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNoteNotFound
	}

	return nil
}

// DeleteNote removes a note owned by userID within tenantID.
func (r *Repository) DeleteNote(ctx context.Context, tenantID, userID, id string) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM notes WHERE tenant_id = $1 AND id = $2 AND user_id = $3`,
		tenantID, id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNoteNotFound
	}

	return nil
}

func scanNote(row pgx.Row) (*model.Note, error) {
	var n model.Note
	var author model.UserSummary
	err := row.Scan(
		&n.ID,
		&n.TenantID,
		&n.UserID,
		&n.Title,
		&n.Content,
		&n.CreatedAt,
		&n.UpdatedAt,
		&author.ID,
		&author.Name,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("failed to scan note: %w", err)
	}
	n.User = &author
	return &n, nil
}
