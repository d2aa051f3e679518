// Package model defines domain entities for the application.
package model

import "time"

// Note limits.
const (
	MaxNoteTitleLength = 255
)

// Note is owned by one user and stored in that user's tenant partition.
type Note struct {
	ID        string       `json:"id"`
	TenantID  string       `json:"tenant_id"`
	UserID    string       `json:"user_id"`
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	User      *UserSummary `json:"user,omitempty"`
}

// IsOwnedBy reports whether the note belongs to the given user.
func (n *Note) IsOwnedBy(userID string) bool {
	return userID != "" && n.UserID == userID
}
