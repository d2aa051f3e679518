package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/notedesk/notedesk/internal/model"
)

// CreateAccessToken stores a hashed access token.
func (r *Repository) CreateAccessToken(ctx context.Context, token *model.AccessToken) error {
	query := `
		INSERT INTO access_tokens (id, user_id, name, token_hash, token_prefix, abilities, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.Name,
		token.TokenHash,
		token.TokenPrefix,
		pq.Array(token.Abilities),
		token.ExpiresAt,
		token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create access token: %w", err)
	}

	return nil
}

// GetAccessTokensByPrefix returns active tokens sharing a prefix, each with
// the tenant of its owning user. Candidates are verified against the hash
// by the caller.
func (r *Repository) GetAccessTokensByPrefix(ctx context.Context, prefix string) ([]*model.AccessToken, error) {
	query := `
		SELECT t.id, t.user_id, t.name, t.token_hash, t.token_prefix, t.abilities,
		       t.last_used_at, t.expires_at, t.revoked_at, t.created_at, u.tenant_id
		FROM access_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.token_prefix = $1 AND t.revoked_at IS NULL
	`

	rows, err := r.pool.Query(ctx, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to get access tokens by prefix: %w", err)
	}
	defer rows.Close()

	var tokens []*model.AccessToken
	for rows.Next() {
		tok, err := scanAccessToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating access tokens: %w", err)
	}

	return tokens, nil
}

// RevokeAccessToken marks a token revoked.
func (r *Repository) RevokeAccessToken(ctx context.Context, id string, at time.Time) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE access_tokens SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`,
		id, at,
	)
	if err != nil {
		return fmt.Errorf("failed to revoke access token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// UpdateAccessTokenLastUsed records a successful authentication.
func (r *Repository) UpdateAccessTokenLastUsed(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE access_tokens SET last_used_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to update access token last used: %w", err)
	}
	return nil
}

func scanAccessToken(row pgx.Row) (*model.AccessToken, error) {
	var t model.AccessToken
	var abilities []string

	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Name,
		&t.TokenHash,
		&t.TokenPrefix,
		pq.Array(&abilities),
		&t.LastUsedAt,
		&t.ExpiresAt,
		&t.RevokedAt,
		&t.CreatedAt,
		&t.OwnerTenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan access token: %w", err)
	}

	t.Abilities = abilities
	return &t, nil
}
