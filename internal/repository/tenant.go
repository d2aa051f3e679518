package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/notedesk/notedesk/internal/model"
)

// ListTenants returns every tenant with its domains, oldest first.
func (r *Repository) ListTenants(ctx context.Context) ([]*model.Tenant, error) {
	query := `
		SELECT t.id, t.data, t.created_at, t.updated_at,
		       d.id, d.domain, d.created_at, d.updated_at
		FROM tenants t
		LEFT JOIN domains d ON d.tenant_id = t.id
		ORDER BY t.created_at, t.id, d.id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	tenants := make([]*model.Tenant, 0)
	var current *model.Tenant
	for rows.Next() {
		var (
			t        model.Tenant
			domainID *int64
			domain   *string
			dCreated *time.Time
			dUpdated *time.Time
		)
		if err := rows.Scan(
			&t.ID, &t.Data, &t.CreatedAt, &t.UpdatedAt,
			&domainID, &domain, &dCreated, &dUpdated,
		); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}

		if current == nil || current.ID != t.ID {
			t.Domains = []model.Domain{}
			current = &t
			tenants = append(tenants, current)
		}
		if domainID != nil && domain != nil {
			d := model.Domain{ID: *domainID, Domain: *domain, TenantID: t.ID}
			if dCreated != nil {
				d.CreatedAt = *dCreated
			}
			if dUpdated != nil {
				d.UpdatedAt = *dUpdated
			}
			current.Domains = append(current.Domains, d)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tenants: %w", err)
	}

	return tenants, nil
}

// GetTenant returns a tenant and its domains.
func (r *Repository) GetTenant(ctx context.Context, id string) (*model.Tenant, error) {
	var t model.Tenant
	err := r.pool.QueryRow(ctx,
		`SELECT id, data, created_at, updated_at FROM tenants WHERE id = $1`, id,
	).Scan(&t.ID, &t.Data, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, domain, tenant_id, created_at, updated_at
		FROM domains WHERE tenant_id = $1 ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant domains: %w", err)
	}
	t.Domains, err = pgx.CollectRows(rows, pgx.RowToStructByPos[model.Domain])
	if err != nil {
		return nil, fmt.Errorf("failed to scan domains: %w", err)
	}

	return &t, nil
}

// TenantExists reports whether a tenant id is taken.
func (r *Repository) TenantExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tenants WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check tenant: %w", err)
	}
	return exists, nil
}

// DomainExists reports whether a hostname is bound to any tenant.
func (r *Repository) DomainExists(ctx context.Context, domain string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM domains WHERE domain = $1)`, domain).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check domain: %w", err)
	}
	return exists, nil
}

// CreateTenantWithDomain inserts a tenant and its first domain atomically.
// Either both rows exist afterwards or neither does. A lost race on either
// unique key returns ErrTenantExists or ErrDomainExists.
func (r *Repository) CreateTenantWithDomain(ctx context.Context, tenant *model.Tenant, hostname string) error {
	if tenant.Data == nil {
		tenant.Data = map[string]any{}
	}

	return r.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO tenants (id, data)
			VALUES ($1, $2)
			RETURNING created_at, updated_at
		`, tenant.ID, tenant.Data).Scan(&tenant.CreatedAt, &tenant.UpdatedAt)
		if err != nil {
			if mapped := translateUnique(err); mapped != nil {
				return mapped
			}
			return fmt.Errorf("failed to create tenant: %w", err)
		}

		d := model.Domain{Domain: hostname, TenantID: tenant.ID}
		err = tx.QueryRow(ctx, `
			INSERT INTO domains (domain, tenant_id)
			VALUES ($1, $2)
			RETURNING id, created_at, updated_at
		`, hostname, tenant.ID).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			if mapped := translateUnique(err); mapped != nil {
				return mapped
			}
			return fmt.Errorf("failed to create domain: %w", err)
		}

		tenant.Domains = []model.Domain{d}
		return nil
	})
}

// TenantIDForDomain returns the tenant owning a normalized hostname.
func (r *Repository) TenantIDForDomain(ctx context.Context, hostname string) (string, bool, error) {
	var tenantID string
	err := r.pool.QueryRow(ctx, `SELECT tenant_id FROM domains WHERE domain = $1`, hostname).Scan(&tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to find domain: %w", err)
	}
	return tenantID, true, nil
}
