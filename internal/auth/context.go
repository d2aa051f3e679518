package auth

import (
	"context"

	"github.com/notedesk/notedesk/internal/model"
)

type contextKey struct{}

// ContextWithAuth binds the authenticated principal to ctx.
func ContextWithAuth(ctx context.Context, a *model.AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, a)
}

// FromContext returns the principal bound to ctx, or nil.
func FromContext(ctx context.Context) *model.AuthContext {
	a, _ := ctx.Value(contextKey{}).(*model.AuthContext)
	return a
}

// UserIDFromContext returns the authenticated user id, or "".
func UserIDFromContext(ctx context.Context) string {
	if a := FromContext(ctx); a != nil {
		return a.UserID
	}
	return ""
}
