package service

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	"github.com/notedesk/notedesk/internal/auth"
	"github.com/notedesk/notedesk/internal/model"
	"github.com/notedesk/notedesk/internal/tenancy"
)

var cheapParams = auth.Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func newTenant(id string) *model.Tenant {
	return &model.Tenant{ID: id, Data: map[string]any{}}
}

func tenantCtx(id string) context.Context {
	return tenancy.WithTenant(context.Background(), tenancy.Tenant{ID: id, Domain: id + ".localhost"})
}

func seedUser(t *testing.T, store *memStore, tenantID, email, password string) *model.User {
	t.Helper()
	hash, err := auth.HashWithParams(password, cheapParams)
	require.NoError(t, err)

	now := time.Now().UTC()
	u := &model.User{
		ID:           ulid.Make().String(),
		TenantID:     tenantID,
		Name:         "User " + email,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}
