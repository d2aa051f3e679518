package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/notedesk/notedesk/internal/metrics"
	"github.com/notedesk/notedesk/internal/model"
	"github.com/notedesk/notedesk/internal/repository"
	"github.com/notedesk/notedesk/internal/tenancy"
)

// TenantService runs the central tenant directory. It never needs a tenant
// in the context.
type TenantService struct {
	store      TenantStore
	baseDomain string
	metrics    metrics.Recorder
}

// NewTenantService creates a TenantService. Registered subdomains are
// created under baseDomain.
func NewTenantService(store TenantStore, baseDomain string, recorder metrics.Recorder) *TenantService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TenantService{
		store:      store,
		baseDomain: strings.Trim(strings.ToLower(baseDomain), "."),
		metrics:    recorder,
	}
}

// RegisterCompanyInput defines input for registering a company.
type RegisterCompanyInput struct {
	CompanyName string `json:"company_name" validate:"required,max=255"`
	Domain      string `json:"domain" validate:"required,max=63,domainlabel,notreserved"`
}

// List returns every tenant with its domains.
func (s *TenantService) List(ctx context.Context) ([]*model.Tenant, error) {
	tenants, err := s.store.ListTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return tenants, nil
}

// Hostname returns the full domain for a subdomain label.
func (s *TenantService) Hostname(label string) string {
	return label + "." + s.baseDomain
}

// Register creates a tenant and its domain. Duplicate ids or domains are
// reported as *ConflictError whether caught by the pre-check or by the
// database unique constraints.
func (s *TenantService) Register(ctx context.Context, input RegisterCompanyInput) (*model.Tenant, error) {
	input.CompanyName = strings.TrimSpace(input.CompanyName)
	input.Domain = strings.TrimSpace(input.Domain)

	if err := validateInput(input); err != nil {
		return nil, err
	}

	hostname, err := tenancy.NormalizeHost(s.Hostname(input.Domain))
	if err != nil {
		ve := NewValidationError()
		ve.Add("domain", "The domain field format is invalid.")
		return nil, ve
	}

	exists, err := s.store.TenantExists(ctx, input.CompanyName)
	if err != nil {
		return nil, fmt.Errorf("failed to check tenant: %w", err)
	}
	if exists {
		return nil, taken("company_name")
	}

	exists, err = s.store.DomainExists(ctx, hostname)
	if err != nil {
		return nil, fmt.Errorf("failed to check domain: %w", err)
	}
	if exists {
		return nil, taken("domain")
	}

	tenant := &model.Tenant{ID: input.CompanyName, Data: map[string]any{}}
	if err := s.store.CreateTenantWithDomain(ctx, tenant, hostname); err != nil {
		switch {
		case errors.Is(err, repository.ErrTenantExists):
			return nil, taken("company_name")
		case errors.Is(err, repository.ErrDomainExists):
			return nil, taken("domain")
		}
		return nil, fmt.Errorf("failed to register tenant: %w", err)
	}

	s.metrics.IncTenantRegistered()
	return tenant, nil
}
