package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/notedesk/notedesk/internal/activity"
	"github.com/notedesk/notedesk/internal/cache"
	"github.com/notedesk/notedesk/internal/model"
	"github.com/notedesk/notedesk/internal/repository"
)

// memStore mimics the Postgres constraints the services rely on.
type memStore struct {
	mu      sync.Mutex
	tenants map[string]*model.Tenant
	domains map[string]string // hostname -> tenant id
	users   map[string]*model.User
	notes   map[string]*model.Note
	tokens  map[string]*model.AccessToken

	// beforeCreateTenant runs inside CreateTenantWithDomain before the
	// uniqueness check, to simulate a concurrent writer.
	beforeCreateTenant func()
}

func newMemStore() *memStore {
	return &memStore{
		tenants: map[string]*model.Tenant{},
		domains: map[string]string{},
		users:   map[string]*model.User{},
		notes:   map[string]*model.Note{},
		tokens:  map[string]*model.AccessToken{},
	}
}

func (m *memStore) ListTenants(context.Context) ([]*model.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*model.Tenant, 0, len(m.tenants))
	for _, t := range m.tenants {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) TenantExists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tenants[id]
	return ok, nil
}

func (m *memStore) DomainExists(_ context.Context, domain string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.domains[domain]
	return ok, nil
}

func (m *memStore) CreateTenantWithDomain(_ context.Context, tenant *model.Tenant, hostname string) error {
	if m.beforeCreateTenant != nil {
		m.beforeCreateTenant()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tenants[tenant.ID]; ok {
		return repository.ErrTenantExists
	}
	if _, ok := m.domains[hostname]; ok {
		return repository.ErrDomainExists
	}

	now := time.Now().UTC()
	tenant.CreatedAt, tenant.UpdatedAt = now, now
	tenant.Domains = []model.Domain{{ID: int64(len(m.domains) + 1), Domain: hostname, TenantID: tenant.ID, CreatedAt: now, UpdatedAt: now}}

	cp := *tenant
	m.tenants[tenant.ID] = &cp
	m.domains[hostname] = tenant.ID
	return nil
}

func (m *memStore) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.TenantID == user.TenantID && u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memStore) GetUserByID(_ context.Context, tenantID, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok || u.TenantID != tenantID {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, tenantID, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.TenantID == tenantID && u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memStore) EmailExists(ctx context.Context, tenantID, email string) (bool, error) {
	_, err := m.GetUserByEmail(ctx, tenantID, email)
	return err == nil, nil
}

func (m *memStore) CreateAccessToken(_ context.Context, token *model.AccessToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *token
	m.tokens[token.ID] = &cp
	return nil
}

func (m *memStore) GetAccessTokensByPrefix(_ context.Context, prefix string) ([]*model.AccessToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*model.AccessToken
	for _, t := range m.tokens {
		if t.TokenPrefix != prefix || t.RevokedAt != nil {
			continue
		}
		cp := *t
		if u, ok := m.users[t.UserID]; ok {
			cp.OwnerTenantID = u.TenantID
		}
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memStore) RevokeAccessToken(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tokens[id]
	if !ok || t.RevokedAt != nil {
		return repository.ErrTokenNotFound
	}
	t.RevokedAt = &at
	return nil
}

func (m *memStore) UpdateAccessTokenLastUsed(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tokens[id]; ok {
		t.LastUsedAt = &at
	}
	return nil
}

func (m *memStore) ListNotes(_ context.Context, tenantID string) ([]*model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*model.Note, 0)
	for _, n := range m.notes {
		if n.TenantID != tenantID {
			continue
		}
		cp := *n
		if u, ok := m.users[n.UserID]; ok {
			cp.User = u.Summary()
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *memStore) GetNote(_ context.Context, tenantID, id string) (*model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.notes[id]
	if !ok || n.TenantID != tenantID {
		return nil, repository.ErrNoteNotFound
	}
	cp := *n
	if u, ok := m.users[n.UserID]; ok {
		cp.User = u.Summary()
	}
	return &cp, nil
}

func (m *memStore) CreateNote(_ context.Context, note *model.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[note.UserID]
	if !ok || u.TenantID != note.TenantID {
		return errForeignKey
	}
	cp := *note
	m.notes[note.ID] = &cp
	return nil
}

func (m *memStore) UpdateNote(_ context.Context, note *model.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.notes[note.ID]
	if !ok || n.TenantID != note.TenantID || n.UserID != note.UserID {
		return repository.ErrNoteNotFound
	}
	n.Title, n.Content, n.UpdatedAt = note.Title, note.Content, note.UpdatedAt
	return nil
}

func (m *memStore) DeleteNote(_ context.Context, tenantID, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.notes[id]
	if !ok || n.TenantID != tenantID || n.UserID != userID {
		return repository.ErrNoteNotFound
	}
	delete(m.notes, id)
	return nil
}

func (m *memStore) noteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notes)
}

type fkError struct{}

func (fkError) Error() string { return "violates foreign key constraint notes_owner_fkey" }

var errForeignKey error = fkError{}

// memCache is an AuthCache without expiry. Revocation markers behave like
// the Redis ones: a revoked key is never cached again.
type memCache struct {
	mu      sync.Mutex
	entries map[string]*model.AuthContext
	revoked map[string]bool
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]*model.AuthContext{}, revoked: map[string]bool{}}
}

func (c *memCache) GetAuthContext(_ context.Context, key string) (*model.AuthContext, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.revoked[key] {
		return nil, nil
	}
	return c.entries[key], nil
}

func (c *memCache) SetAuthContext(_ context.Context, key string, a *model.AuthContext, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.revoked[key] {
		return cache.ErrAuthRevoked
	}
	c.entries[key] = a
	return nil
}

func (c *memCache) RevokeAuthContext(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked[key] = true
	delete(c.entries, key)
	return nil
}

func (c *memCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// recordingPublisher captures activity events synchronously.
type recordingPublisher struct {
	mu     sync.Mutex
	events []activity.Event
}

func (p *recordingPublisher) PublishAsync(e activity.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// gatedTokens pauses GetAccessTokensByPrefix after the rows are read, so a
// test can interleave another call with an authentication in progress.
type gatedTokens struct {
	*memStore
	fetched chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedTokens(store *memStore) *gatedTokens {
	return &gatedTokens{memStore: store, fetched: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedTokens) GetAccessTokensByPrefix(ctx context.Context, prefix string) ([]*model.AccessToken, error) {
	rows, err := g.memStore.GetAccessTokensByPrefix(ctx, prefix)
	g.once.Do(func() {
		close(g.fetched)
		<-g.release
	})
	return rows, err
}
