package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notedesk/notedesk/internal/model"
)

func newTestCache(t *testing.T) (*miniredis.Miniredis, *Cache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewWithClient(client)
}

func TestAuthContext_RoundTrip(t *testing.T) {
	mr, c := newTestCache(t)
	ctx := context.Background()

	got, err := c.GetAuthContext(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	want := &model.AuthContext{
		TokenID:     "tok1",
		TokenPrefix: "abc123",
		UserID:      "u1",
		TenantID:    "acme",
		Abilities:   []string{model.AbilityAll},
	}
	require.NoError(t, c.SetAuthContext(ctx, "k", want, 0))

	got, err = c.GetAuthContext(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, AuthCacheTTL, mr.TTL(authCachePrefix+"k"))

	require.NoError(t, c.RevokeAuthContext(ctx, "k"))
	got, err = c.GetAuthContext(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAuthContext_RevokedTokenIsNotCachedAgain(t *testing.T) {
	mr, c := newTestCache(t)
	ctx := context.Background()
	principal := &model.AuthContext{TokenID: "tok1", UserID: "u1", TenantID: "acme"}

	// Logout lands before a slow authentication finishes.
	require.NoError(t, c.RevokeAuthContext(ctx, "k"))
	assert.Equal(t, AuthCacheTTL, mr.TTL(authRevokedPrefix+"k"))

	err := c.SetAuthContext(ctx, "k", principal, 0)
	assert.ErrorIs(t, err, ErrAuthRevoked)
	assert.False(t, mr.Exists(authCachePrefix+"k"))

	// An entry written behind the marker's back is still ignored.
	require.NoError(t, mr.Set(authCachePrefix+"k", `{"token_id":"tok1","tenant_id":"acme"}`))
	got, err := c.GetAuthContext(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Other tokens are unaffected.
	require.NoError(t, c.SetAuthContext(ctx, "other", principal, 0))
	got, err = c.GetAuthContext(ctx, "other")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestAuthContext_TTLClamp(t *testing.T) {
	mr, c := newTestCache(t)
	ctx := context.Background()
	auth := &model.AuthContext{TokenID: "t", TenantID: "acme"}

	require.NoError(t, c.SetAuthContext(ctx, "short", auth, 30*time.Second))
	assert.Equal(t, 30*time.Second, mr.TTL(authCachePrefix+"short"))

	require.NoError(t, c.SetAuthContext(ctx, "long", auth, time.Hour))
	assert.Equal(t, AuthCacheTTL, mr.TTL(authCachePrefix+"long"))

	mr.FastForward(31 * time.Second)
	got, err := c.GetAuthContext(ctx, "short")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAuthContext_CorruptEntryIsMiss(t *testing.T) {
	mr, c := newTestCache(t)
	require.NoError(t, mr.Set(authCachePrefix+"bad", "{not json"))
	require.NoError(t, mr.Set(authCachePrefix+"notenant", `{"token_id":"t"}`))

	got, err := c.GetAuthContext(context.Background(), "bad")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = c.GetAuthContext(context.Background(), "notenant")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCheckLoginRateLimit(t *testing.T) {
	_, c := newTestCache(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := c.CheckLoginRateLimit(ctx, "acme", "10.0.0.1", 6, 3)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "attempt %d", i+1)
	}

	res, err := c.CheckLoginRateLimit(ctx, "acme", "10.0.0.1", 6, 3)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))

	// Other tenant and other IP have their own buckets.
	res, err = c.CheckLoginRateLimit(ctx, "globex", "10.0.0.1", 6, 3)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = c.CheckLoginRateLimit(ctx, "acme", "10.0.0.2", 6, 3)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestCheckLoginRateLimit_Disabled(t *testing.T) {
	_, c := newTestCache(t)

	res, err := c.CheckLoginRateLimit(context.Background(), "acme", "10.0.0.1", 0, 5)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestCheckLoginRateLimit_FailsOpen(t *testing.T) {
	mr, c := newTestCache(t)
	mr.Close()

	res, err := c.CheckLoginRateLimit(context.Background(), "acme", "10.0.0.1", 6, 3)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestHashIP(t *testing.T) {
	t.Parallel()

	assert.Equal(t, hashIP("192.168.1.1"), hashIP("192.168.1.1"))
	assert.NotEqual(t, hashIP("127.0.0.1"), hashIP("::1"))
	assert.Len(t, hashIP(""), 16)
}
