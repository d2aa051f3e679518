// Package migrations embeds the SQL schema and applies it to PostgreSQL.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed *.sql
var files embed.FS

// Up returns the names of all up migrations in apply order.
func Up() ([]string, error) {
	return list(".up.sql", false)
}

// Down returns the names of all down migrations in apply order (newest first).
func Down() ([]string, error) {
	return list(".down.sql", true)
}

// Apply runs every up migration. Each file is idempotent (IF NOT EXISTS).
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	names, err := Up()
	if err != nil {
		return err
	}
	return run(ctx, pool, names)
}

// Reset drops and recreates the whole schema. Test and seed use only.
func Reset(ctx context.Context, pool *pgxpool.Pool) error {
	downs, err := Down()
	if err != nil {
		return err
	}
	if err := run(ctx, pool, downs); err != nil {
		return err
	}
	return Apply(ctx, pool)
}

func run(ctx context.Context, pool *pgxpool.Pool, names []string) error {
	for _, name := range names {
		sql, err := files.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}

func list(suffix string, reverse bool) ([]string, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), suffix) {
			names = append(names, e.Name())
		}
	}

	sort.Strings(names)
	if reverse {
		sort.Sort(sort.Reverse(sort.StringSlice(names)))
	}
	return names, nil
}
