package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Repository errors. Callers match them with errors.Is.
var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrTenantExists   = errors.New("tenant id already exists")
	ErrDomainExists   = errors.New("domain already exists")

	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")

	ErrNoteNotFound = errors.New("note not found")

	ErrTokenNotFound = errors.New("access token not found")
)

// PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// uniqueConstraint maps a unique constraint name to the error reported for it.
var uniqueConstraint = map[string]error{
	"tenants_pkey":           ErrTenantExists,
	"domains_domain_key":     ErrDomainExists,
	"users_tenant_email_key": ErrEmailExists,
}

// translateUnique returns the sentinel for a unique violation on a known
// constraint, or nil when err is something else.
func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return nil
	}
	return uniqueConstraint[pgErr.ConstraintName]
}
