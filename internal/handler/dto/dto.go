// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/notedesk/notedesk/internal/model"
)

// ErrorResponse is the error envelope of every failed request.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Errors map[string][]string `json:"errors,omitempty"`
	Detail string              `json:"detail,omitempty"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// RegisterCompanyRequest is the body of POST /register-company.
type RegisterCompanyRequest struct {
	CompanyName string `json:"company_name"`
	Domain      string `json:"domain"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	Abilities []string `json:"abilities,omitempty"`
}

// RegisterUserRequest is the body of POST /register.
type RegisterUserRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// NoteRequest is the body of POST /notes and PUT /notes/{id}.
type NoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// DomainResponse is a hostname bound to a tenant.
type DomainResponse struct {
	ID        int64     `json:"id"`
	Domain    string    `json:"domain"`
	TenantID  string    `json:"tenant_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TenantResponse is a tenant with its domains.
type TenantResponse struct {
	ID        string           `json:"id"`
	Domains   []DomainResponse `json:"domains"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// RegisterCompanyResponse is returned on successful registration.
type RegisterCompanyResponse struct {
	Message string         `json:"message"`
	Tenant  TenantResponse `json:"tenant"`
}

// UserResponse is the public view of a user. The password hash never leaves
// the service layer.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	TenantID  string    `json:"tenant_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthResponse is returned by login and registration.
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// AuthorResponse is the note author.
type AuthorResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NoteResponse is a note in API responses.
type NoteResponse struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	TenantID  string          `json:"tenant_id"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	User      *AuthorResponse `json:"user,omitempty"`
}

// ToTenantResponse converts a Tenant model.
func ToTenantResponse(t *model.Tenant) TenantResponse {
	domains := make([]DomainResponse, 0, len(t.Domains))
	for _, d := range t.Domains {
		domains = append(domains, DomainResponse{
			ID:        d.ID,
			Domain:    d.Domain,
			TenantID:  d.TenantID,
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		})
	}
	return TenantResponse{
		ID:        t.ID,
		Domains:   domains,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// ToTenantListResponse converts tenants, never returning nil.
func ToTenantListResponse(tenants []*model.Tenant) []TenantResponse {
	out := make([]TenantResponse, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, ToTenantResponse(t))
	}
	return out
}

// ToUserResponse converts a User model.
func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		TenantID:  u.TenantID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ToNoteResponse converts a Note model.
func ToNoteResponse(n *model.Note) NoteResponse {
	resp := NoteResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		TenantID:  n.TenantID,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
	if n.User != nil {
		resp.User = &AuthorResponse{ID: n.User.ID, Name: n.User.Name}
	}
	return resp
}

// ToNoteListResponse converts notes, never returning nil.
func ToNoteListResponse(notes []*model.Note) []NoteResponse {
	out := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, ToNoteResponse(n))
	}
	return out
}
