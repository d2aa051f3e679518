package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notedesk/notedesk/internal/metrics"
)

func TestTenantService_RegisterScenario(t *testing.T) {
	store := newMemStore()
	rec := metrics.NewInMemory()
	svc := NewTenantService(store, "localhost", rec)
	ctx := context.Background()

	tenant, err := svc.Register(ctx, RegisterCompanyInput{CompanyName: "acme", Domain: "acme"})
	require.NoError(t, err)
	assert.Equal(t, "acme", tenant.ID)
	assert.Equal(t, []string{"acme.localhost"}, tenant.Hostnames())

	_, err = svc.Register(ctx, RegisterCompanyInput{CompanyName: "acme", Domain: "other"})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "company_name", conflict.Field)
	assert.Equal(t, "The company name has already been taken.", conflict.Message)

	_, err = svc.Register(ctx, RegisterCompanyInput{CompanyName: "other", Domain: "acme"})
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "domain", conflict.Field)

	tenants, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, tenants, 1)
	assert.EqualValues(t, 1, rec.Snapshot().TenantsRegistered)
}

func TestTenantService_RegisterValidation(t *testing.T) {
	svc := NewTenantService(newMemStore(), "localhost", nil)

	tests := []struct {
		name  string
		input RegisterCompanyInput
		field string
	}{
		{"missing company", RegisterCompanyInput{Domain: "acme"}, "company_name"},
		{"blank company", RegisterCompanyInput{CompanyName: "   ", Domain: "acme"}, "company_name"},
		{"company too long", RegisterCompanyInput{CompanyName: strings.Repeat("a", 256), Domain: "acme"}, "company_name"},
		{"missing domain", RegisterCompanyInput{CompanyName: "acme"}, "domain"},
		{"uppercase domain", RegisterCompanyInput{CompanyName: "acme", Domain: "Acme"}, "domain"},
		{"dotted domain", RegisterCompanyInput{CompanyName: "acme", Domain: "acme.evil"}, "domain"},
		{"underscore domain", RegisterCompanyInput{CompanyName: "acme", Domain: "ac_me"}, "domain"},
		{"domain too long", RegisterCompanyInput{CompanyName: "acme", Domain: strings.Repeat("a", 64)}, "domain"},
		{"reserved domain", RegisterCompanyInput{CompanyName: "acme", Domain: "www"}, "domain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.input)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}
}

func TestTenantService_RegisterAcceptsMaxLabel(t *testing.T) {
	svc := NewTenantService(newMemStore(), "localhost", nil)

	label := strings.Repeat("a", MaxDomainLabelLength)
	tenant, err := svc.Register(context.Background(), RegisterCompanyInput{CompanyName: "long", Domain: label})
	require.NoError(t, err)
	assert.Equal(t, label+".localhost", tenant.Domains[0].Domain)
}

func TestTenantService_RegisterLostRace(t *testing.T) {
	store := newMemStore()
	svc := NewTenantService(store, "localhost", nil)

	// Another writer commits the same company between pre-check and insert.
	store.beforeCreateTenant = func() {
		store.beforeCreateTenant = nil
		_ = store.CreateTenantWithDomain(context.Background(), newTenant("acme"), "elsewhere.localhost")
	}

	_, err := svc.Register(context.Background(), RegisterCompanyInput{CompanyName: "acme", Domain: "acme"})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "company_name", conflict.Field)

	exists, _ := store.DomainExists(context.Background(), "acme.localhost")
	assert.False(t, exists, "losing registration must not leave a domain behind")
}

func TestTenantService_RegisterConcurrent(t *testing.T) {
	store := newMemStore()
	svc := NewTenantService(store, "localhost", nil)

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(context.Background(), RegisterCompanyInput{CompanyName: "acme", Domain: "acme"})
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		var conflict *ConflictError
		require.True(t, errors.As(err, &conflict), "unexpected error %v", err)
	}
	assert.Equal(t, 1, ok)

	tenants, _ := store.ListTenants(context.Background())
	assert.Len(t, tenants, 1)
}

func TestTenantService_BaseDomain(t *testing.T) {
	svc := NewTenantService(newMemStore(), ".Notes.Example.com.", nil)
	assert.Equal(t, "acme.notes.example.com", svc.Hostname("acme"))
}
