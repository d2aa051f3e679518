package tenancy

import (
	"context"
	"fmt"
)

// LookupFunc finds the tenant id owning a normalized domain.
// found is false when no domain row matches.
type LookupFunc func(ctx context.Context, domain string) (tenantID string, found bool, err error)

// Resolver maps request hosts to tenants.
type Resolver struct {
	lookup  LookupFunc
	central map[string]bool
}

// NewResolver creates a Resolver. centralDomains are the hosts that serve the
// tenant directory and company registration and never resolve to a tenant.
func NewResolver(lookup LookupFunc, centralDomains []string) *Resolver {
	central := make(map[string]bool, len(centralDomains))
	for _, d := range centralDomains {
		if host, err := NormalizeHost(d); err == nil {
			central[host] = true
		}
	}
	return &Resolver{lookup: lookup, central: central}
}

// IsCentral reports whether host is one of the central domains.
func (r *Resolver) IsCentral(host string) bool {
	normalized, err := NormalizeHost(host)
	if err != nil {
		return false
	}
	return r.central[normalized]
}

// Resolve finds the tenant for host. Central hosts never resolve.
func (r *Resolver) Resolve(ctx context.Context, host string) (Tenant, error) {
	normalized, err := NormalizeHost(host)
	if err != nil {
		return Tenant{}, ErrTenantNotFound
	}

	if r.central[normalized] {
		return Tenant{}, ErrTenantNotFound
	}

	tenantID, found, err := r.lookup(ctx, normalized)
	if err != nil {
		return Tenant{}, fmt.Errorf("lookup domain %q: %w", normalized, err)
	}
	if !found || tenantID == "" {
		return Tenant{}, ErrTenantNotFound
	}

	return Tenant{ID: tenantID, Domain: normalized}, nil
}
