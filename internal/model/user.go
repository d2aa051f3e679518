// Package model defines domain entities for the application.
package model

import "time"

// User is an account inside a single tenant. Email is unique per tenant only.
type User struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenant_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserSummary is the author info embedded in note listings.
type UserSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Summary returns the public author view of the user.
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name}
}
