// Package model defines domain entities for the application.
package model

import "time"

// Tenant is a company partition. ID is the human-chosen slug and never changes.
type Tenant struct {
	ID        string         `json:"id"`
	Data      map[string]any `json:"data"`
	Domains   []Domain       `json:"domains,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Domain binds a hostname to exactly one tenant.
type Domain struct {
	ID        int64     `json:"id"`
	Domain    string    `json:"domain"`
	TenantID  string    `json:"tenant_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Hostnames returns the domain strings of the tenant.
func (t *Tenant) Hostnames() []string {
	hosts := make([]string, 0, len(t.Domains))
	for _, d := range t.Domains {
		hosts = append(hosts, d.Domain)
	}
	return hosts
}
