package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/notedesk/notedesk/internal/model"
)

const (
	authCachePrefix   = "auth:token:"
	authRevokedPrefix = "auth:revoked:"
	// AuthCacheTTL bounds how long a revoked token can survive in a
	// replica that missed the explicit delete.
	AuthCacheTTL = 5 * time.Minute
)

// ErrAuthRevoked is returned by SetAuthContext when the token was logged out
// while it was being authenticated.
var ErrAuthRevoked = errors.New("auth context revoked")

// setUnlessRevoked writes KEYS[1] only while the revocation marker KEYS[2]
// is absent.
var setUnlessRevoked = redis.NewScript(`
if redis.call("EXISTS", KEYS[2]) == 1 then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`)

// CachedAuthContext is the Redis representation of an authenticated token.
type CachedAuthContext struct {
	TokenID     string   `json:"token_id"`
	TokenPrefix string   `json:"token_prefix"`
	UserID      string   `json:"user_id"`
	TenantID    string   `json:"tenant_id"`
	Abilities   []string `json:"abilities"`
}

// GetAuthContext returns the cached principal for cacheKey.
// A miss, a revoked token or a corrupt entry returns nil, nil.
func (c *Cache) GetAuthContext(ctx context.Context, cacheKey string) (*model.AuthContext, error) {
	values, err := c.client.MGet(ctx, authCachePrefix+cacheKey, authRevokedPrefix+cacheKey).Result()
	if err != nil || len(values) != 2 {
		return nil, nil //nolint:nilerr
	}
	if values[1] != nil {
		return nil, nil
	}
	data, ok := values[0].(string)
	if !ok {
		return nil, nil
	}

	var cached CachedAuthContext
	if err := json.Unmarshal([]byte(data), &cached); err != nil {
		return nil, nil //nolint:nilerr
	}
	if cached.TokenID == "" || cached.TenantID == "" {
		return nil, nil
	}

	return &model.AuthContext{
		TokenID:     cached.TokenID,
		TokenPrefix: cached.TokenPrefix,
		UserID:      cached.UserID,
		TenantID:    cached.TenantID,
		Abilities:   cached.Abilities,
	}, nil
}

// SetAuthContext caches a principal for at most ttl (AuthCacheTTL if <= 0).
// It returns ErrAuthRevoked, and writes nothing, once the token has been
// revoked through RevokeAuthContext.
func (c *Cache) SetAuthContext(ctx context.Context, cacheKey string, auth *model.AuthContext, ttl time.Duration) error {
	if ttl <= 0 || ttl > AuthCacheTTL {
		ttl = AuthCacheTTL
	}

	data, err := json.Marshal(CachedAuthContext{
		TokenID:     auth.TokenID,
		TokenPrefix: auth.TokenPrefix,
		UserID:      auth.UserID,
		TenantID:    auth.TenantID,
		Abilities:   auth.Abilities,
	})
	if err != nil {
		return fmt.Errorf("marshal auth context: %w", err)
	}

	written, err := setUnlessRevoked.Run(ctx, c.client,
		[]string{authCachePrefix + cacheKey, authRevokedPrefix + cacheKey},
		string(data), ttl.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("cache auth context: %w", err)
	}
	if written == 0 {
		return ErrAuthRevoked
	}
	return nil
}

// RevokeAuthContext drops a cached principal and blocks it from being cached
// again for AuthCacheTTL. Called on logout.
func (c *Cache) RevokeAuthContext(ctx context.Context, cacheKey string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, authRevokedPrefix+cacheKey, "1", AuthCacheTTL)
		pipe.Del(ctx, authCachePrefix+cacheKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("revoke auth context: %w", err)
	}
	return nil
}
