// Package model defines domain entities for the application.
package model

import (
	"slices"
	"time"
)

// Token abilities. AbilityAll grants every other ability.
const (
	AbilityAll        = "*"
	AbilityNotesRead  = "notes:read"
	AbilityNotesWrite = "notes:write"
)

// ValidAbilities contains all valid ability values.
var ValidAbilities = []string{AbilityAll, AbilityNotesRead, AbilityNotesWrite}

// AccessToken is an opaque bearer credential bound to one user.
// It carries no tenant column; the tenant is derived through the user.
type AccessToken struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Name        string     `json:"name"`
	TokenHash   string     `json:"-"` // Never serialize
	TokenPrefix string     `json:"token_prefix"`
	Abilities   []string   `json:"abilities"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	// OwnerTenantID is the tenant of the owning user, filled on lookup.
	OwnerTenantID string `json:"-"`
}

// IsRevoked returns true if the token has been revoked.
func (t *AccessToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

// IsExpired returns true if the token has an expiry in the past.
func (t *AccessToken) IsExpired(now time.Time) bool {
	return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}

// Can checks if the token grants an ability.
func (t *AccessToken) Can(ability string) bool {
	return hasAbility(t.Abilities, ability)
}

// AuthContext holds the authenticated principal of a request.
// TenantID is the tenant the owning user belongs to and must match the
// tenant resolved from the request host.
type AuthContext struct {
	TokenID     string
	TokenPrefix string
	UserID      string
	TenantID    string
	Abilities   []string
}

// Can checks if the auth context grants an ability.
func (a *AuthContext) Can(ability string) bool {
	return hasAbility(a.Abilities, ability)
}

func hasAbility(abilities []string, ability string) bool {
	if slices.Contains(abilities, AbilityAll) {
		return true
	}
	return slices.Contains(abilities, ability)
}
