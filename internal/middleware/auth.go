// Package middleware contains HTTP middleware for the gascert application.
//
// Middleware functions follow the standard Go pattern of wrapping http.Handler
// and are composed with Stack.
package middleware

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/DukeRupert/gascert/internal/auth"
	"github.com/DukeRupert/gascert/internal/service"
	"github.com/DukeRupert/gascert/internal/session"
)

// AuthMiddleware guards the admin workspace.
//
// There is a single shared admin credential, so there is no user to load:
// the middleware only decides whether the request carries a valid session
// and marks the context accordingly.
type AuthMiddleware struct {
	adminService service.AdminService
	logger       *slog.Logger
	isSecure     bool // Secure flag on cookies (true in production)
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(adminService service.AdminService, logger *slog.Logger, isSecure bool) *AuthMiddleware {
	return &AuthMiddleware{
		adminService: adminService,
		logger:       logger,
		isSecure:     isSecure,
	}
}

// WithAdmin attempts to validate the admin session cookie.
//
// On success the context is marked as admin; on failure the stale cookie
// is cleared. Either way the next handler runs, so routes that render
// differently for a logged-in admin can use auth.IsAdminRequest.
func (m *AuthMiddleware) WithAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(session.CookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		if err := m.adminService.Validate(r.Context(), cookie.Value); err != nil {
			// Invalid or expired session - clear the cookie and continue
			session.ClearCookie(w, m.isSecure)
			next.ServeHTTP(w, r)
			return
		}

		r = r.WithContext(auth.SetAdmin(r.Context()))
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin requires a validated admin session.
//
// Must run after WithAdmin in the chain. Unauthenticated requests are
// redirected to the login page with a return_to parameter.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.IsAdminRequest(r) {
			returnTo := r.URL.Path
			if r.URL.RawQuery != "" {
				returnTo += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, "/login?return_to="+url.QueryEscape(returnTo), http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Stack composes multiple middleware functions into a single middleware.
//
// Middleware is applied in the order provided: the first middleware in the
// slice is the outermost (runs first on request, last on response).
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
