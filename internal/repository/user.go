package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/notedesk/notedesk/internal/model"
)

// CreateUser inserts a user into its tenant partition.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, tenant_id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.TenantID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if mapped := translateUnique(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user of the given tenant.
func (r *Repository) GetUserByID(ctx context.Context, tenantID, id string) (*model.User, error) {
	query := `
		SELECT id, tenant_id, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE tenant_id = $1 AND id = $2
	`
	return scanUser(r.pool.QueryRow(ctx, query, tenantID, id))
}

// GetUserByEmail retrieves a user of the given tenant by email.
func (r *Repository) GetUserByEmail(ctx context.Context, tenantID, email string) (*model.User, error) {
	query := `
		SELECT id, tenant_id, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE tenant_id = $1 AND email = $2
	`
	return scanUser(r.pool.QueryRow(ctx, query, tenantID, email))
}

// EmailExists reports whether an email is registered in the tenant.
func (r *Repository) EmailExists(ctx context.Context, tenantID, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE tenant_id = $1 AND email = $2)`,
		tenantID, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.TenantID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}
