// Package auth provides authentication context helpers.
//
// This package is designed to be imported by both middleware and handler
// packages without causing import cycles.
package auth

import (
	"context"
	"net/http"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// adminContextKey is the key used to mark a request as carrying a
	// valid admin session.
	adminContextKey contextKey = "admin"
)

// IsAdmin reports whether the context carries a validated admin session.
func IsAdmin(ctx context.Context) bool {
	ok, _ := ctx.Value(adminContextKey).(bool)
	return ok
}

// IsAdminRequest is a convenience wrapper around IsAdmin that takes the
// request directly.
func IsAdminRequest(r *http.Request) bool {
	return IsAdmin(r.Context())
}

// SetAdmin marks the context as carrying a validated admin session.
//
// This is called by the auth middleware after validating the session
// cookie against the server-side session store.
func SetAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, adminContextKey, true)
}
