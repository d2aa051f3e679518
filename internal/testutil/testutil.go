// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/notedesk/notedesk/internal/model"
	"github.com/notedesk/notedesk/migrations"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops every table and reapplies the embedded migrations.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if err := migrations.Reset(ctx, pool); err != nil {
		return fmt.Errorf("reset schema: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

var seq atomic.Int64

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), seq.Add(1))
}

// UniqueSlug generates a tenant id that satisfies the domain label rules.
func UniqueSlug(prefix string) string {
	return strings.ToLower(fmt.Sprintf("%s%d", prefix, seq.Add(1)+time.Now().UnixNano()%1_000_000))
}

// NewTestTenant builds a tenant with no domains.
func NewTestTenant(t testing.TB, id string) *model.Tenant {
	t.Helper()
	return &model.Tenant{ID: id, Data: map[string]any{}}
}

// NewTestUser builds a user in tenantID. PasswordHash is a placeholder.
func NewTestUser(t testing.TB, tenantID string) *model.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	id := ulid.Make().String()
	return &model.User{
		ID:           id,
		TenantID:     tenantID,
		Name:         "Test User",
		Email:        strings.ToLower(id) + "@example.com",
		PasswordHash: "hash-" + id,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestNote builds a note authored by user.
func NewTestNote(t testing.TB, user *model.User, title string) *model.Note {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.Note{
		ID:        ulid.Make().String(),
		TenantID:  user.TenantID,
		UserID:    user.ID,
		Title:     title,
		Content:   "content of " + title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestAccessToken builds a token for user with every ability.
func NewTestAccessToken(t testing.TB, userID, prefix string) *model.AccessToken {
	t.Helper()
	return &model.AccessToken{
		ID:          ulid.Make().String(),
		UserID:      userID,
		Name:        "test",
		TokenHash:   "hash-" + prefix,
		TokenPrefix: prefix,
		Abilities:   []string{model.AbilityAll},
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}
