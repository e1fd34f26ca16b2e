// Package appctx provides request-scoped values extraction.
package appctx

import (
	"context"
)

// UserContext contains authenticated user information.
type UserContext struct {
	UserID    string
	Name      string
	Email     string
	Role      string // admin, sales, delivery
	SessionID string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// GetUserName returns the display name from context or empty string.
func GetUserName(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.Name
	}
	return ""
}

// HasRole checks if user has specific role.
func HasRole(ctx context.Context, role string) bool {
	u := GetUser(ctx)
	if u == nil {
		return false
	}
	return u.Role == role
}

// IsAdmin reports whether the authenticated user is an administrator.
func IsAdmin(ctx context.Context) bool {
	return HasRole(ctx, "admin")
}
