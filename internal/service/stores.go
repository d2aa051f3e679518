package service

import (
	"context"
	"time"

	"github.com/notedesk/notedesk/internal/activity"
	"github.com/notedesk/notedesk/internal/model"
)

// TenantStore is the central tenant directory.
type TenantStore interface {
	ListTenants(ctx context.Context) ([]*model.Tenant, error)
	TenantExists(ctx context.Context, id string) (bool, error)
	DomainExists(ctx context.Context, domain string) (bool, error)
	CreateTenantWithDomain(ctx context.Context, tenant *model.Tenant, hostname string) error
}

// UserStore holds tenant users.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, tenantID, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, tenantID, email string) (*model.User, error)
	EmailExists(ctx context.Context, tenantID, email string) (bool, error)
}

// TokenStore holds access tokens.
type TokenStore interface {
	CreateAccessToken(ctx context.Context, token *model.AccessToken) error
	GetAccessTokensByPrefix(ctx context.Context, prefix string) ([]*model.AccessToken, error)
	RevokeAccessToken(ctx context.Context, id string, at time.Time) error
	UpdateAccessTokenLastUsed(ctx context.Context, id string, at time.Time) error
}

// NoteStore holds notes.
type NoteStore interface {
	ListNotes(ctx context.Context, tenantID string) ([]*model.Note, error)
	GetNote(ctx context.Context, tenantID, id string) (*model.Note, error)
	CreateNote(ctx context.Context, note *model.Note) error
	UpdateNote(ctx context.Context, note *model.Note) error
	DeleteNote(ctx context.Context, tenantID, userID, id string) error
}

// AuthCache caches authenticated principals by token digest.
type AuthCache interface {
	GetAuthContext(ctx context.Context, cacheKey string) (*model.AuthContext, error)
	SetAuthContext(ctx context.Context, cacheKey string, auth *model.AuthContext, ttl time.Duration) error
	RevokeAuthContext(ctx context.Context, cacheKey string) error
}

// ActivityPublisher receives note activity events.
type ActivityPublisher interface {
	PublishAsync(event activity.Event)
}

type noopPublisher struct{}

func (noopPublisher) PublishAsync(activity.Event) {}
