// Command seed applies the schema and fills a development database with
// demo tenants, users and notes.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/notedesk/notedesk/internal/auth"
	"github.com/notedesk/notedesk/internal/model"
	"github.com/notedesk/notedesk/internal/repository"
	"github.com/notedesk/notedesk/internal/service"
	"github.com/notedesk/notedesk/internal/tenancy"
	"github.com/notedesk/notedesk/migrations"
)

const (
	usersPerTenant = 5
	notesPerUser   = 3
	seedPassword   = "password"
)

var seedTenants = []string{"company1", "company2"}

type seededTenant struct {
	ID     string   `json:"id"`
	Domain string   `json:"domain"`
	Users  []string `json:"users"`
	Notes  int      `json:"notes"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		baseDomain  = flag.String("base-domain", envOr("TENANT_BASE_DOMAIN", "localhost"), "Suffix appended to tenant domains")
		reset       = flag.Bool("reset", false, "Drop and recreate the schema before seeding")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	if *reset {
		err = migrations.Reset(ctx, repo.Pool())
	} else {
		err = migrations.Apply(ctx, repo.Pool())
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}

	tenants := service.NewTenantService(repo, *baseDomain, nil)
	notes := service.NewNoteService(repo, nil, nil)

	var out []seededTenant
	for _, id := range seedTenants {
		seeded, err := seedTenant(ctx, repo, tenants, notes, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed %s: %v\n", id, err)
			os.Exit(1)
		}
		out = append(out, seeded)
	}

	switch *format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(out); err != nil {
			fmt.Fprintln(os.Stderr, "encode output:", err)
			os.Exit(1)
		}
	default:
		for _, t := range out {
			fmt.Printf("tenant %s at %s: %d users, %d notes\n", t.ID, t.Domain, len(t.Users), t.Notes)
			for _, email := range t.Users {
				fmt.Printf("  %s / %s\n", email, seedPassword)
			}
		}
	}
}

// seedTenant registers a tenant (or reuses it) and fills it under its own
// tenant-bound context.
func seedTenant(ctx context.Context, repo *repository.Repository, tenants *service.TenantService, notes *service.NoteService, id string) (seededTenant, error) {
	tenant, err := tenants.Register(ctx, service.RegisterCompanyInput{CompanyName: id, Domain: id})
	var conflict *service.ConflictError
	switch {
	case errors.As(err, &conflict):
		tenant, err = repo.GetTenant(ctx, id)
		if err != nil {
			return seededTenant{}, fmt.Errorf("load existing tenant: %w", err)
		}
	case err != nil:
		return seededTenant{}, err
	}

	result := seededTenant{ID: tenant.ID}
	if hosts := tenant.Hostnames(); len(hosts) > 0 {
		result.Domain = hosts[0]
	}

	err = tenancy.Run(ctx, tenancy.Tenant{ID: tenant.ID, Domain: result.Domain}, func(ctx context.Context) error {
		for i := 1; i <= usersPerTenant; i++ {
			user, created, err := ensureUser(ctx, repo, tenant.ID, i)
			if err != nil {
				return err
			}
			result.Users = append(result.Users, user.Email)
			if !created {
				continue
			}

			for j := 1; j <= notesPerUser; j++ {
				_, err := notes.Create(ctx, user.ID, service.NoteInput{
					Title:   fmt.Sprintf("Note %d by %s", j, user.Name),
					Content: fmt.Sprintf("Seeded note %d for %s in %s.", j, user.Email, tenant.ID),
				})
				if err != nil {
					return fmt.Errorf("create note: %w", err)
				}
				result.Notes++
			}
		}
		return nil
	})
	return result, err
}

func ensureUser(ctx context.Context, repo *repository.Repository, tenantID string, n int) (*model.User, bool, error) {
	email := fmt.Sprintf("user%d@%s.com", n, tenantID)

	existing, err := repo.GetUserByEmail(ctx, tenantID, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, false, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		TenantID:     tenantID,
		Name:         fmt.Sprintf("User %d", n),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	return user, true, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
