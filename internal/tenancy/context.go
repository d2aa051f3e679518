// Package tenancy resolves the tenant of a request from its host and carries
// it through the request as a context value.
//
// There is no process-wide "current tenant". A tenant is bound to a
// context.Context derived for one request (or one unit of work) and is gone
// when that context is dropped.
package tenancy

import (
	"context"
	"errors"
)

var (
	// ErrTenantNotFound indicates no domain matched the request host.
	ErrTenantNotFound = errors.New("tenant not found")
	// ErrNoTenant indicates tenant-scoped code ran without a resolved tenant.
	ErrNoTenant = errors.New("no tenant in context")
	// ErrInvalidHost indicates the host could not be normalized.
	ErrInvalidHost = errors.New("invalid host")
)

// Tenant is the tenant resolved for a unit of work.
type Tenant struct {
	ID     string
	Domain string
}

type contextKey struct{}

// WithTenant returns a copy of ctx bound to t.
func WithTenant(ctx context.Context, t Tenant) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext returns the tenant bound to ctx, if any.
func FromContext(ctx context.Context) (Tenant, bool) {
	t, ok := ctx.Value(contextKey{}).(Tenant)
	if !ok || t.ID == "" {
		return Tenant{}, false
	}
	return t, true
}

// Require returns the tenant bound to ctx or ErrNoTenant.
func Require(ctx context.Context) (Tenant, error) {
	t, ok := FromContext(ctx)
	if !ok {
		return Tenant{}, ErrNoTenant
	}
	return t, nil
}

// IDFromContext returns the bound tenant id, or "" when central.
func IDFromContext(ctx context.Context) string {
	t, _ := FromContext(ctx)
	return t.ID
}

// Run calls fn with a context bound to t. The binding ends when fn returns,
// whether it succeeds, fails or panics.
func Run(ctx context.Context, t Tenant, fn func(ctx context.Context) error) error {
	if t.ID == "" {
		return ErrNoTenant
	}
	return fn(WithTenant(ctx, t))
}
