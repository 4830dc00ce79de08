// Package session holds the admin session cookie name and helpers.
//
// It exists so that both the handler and middleware packages can manage
// the cookie without importing each other.
package session

import "net/http"

const (
	// CookieName is the name of the cookie that stores the admin session token.
	CookieName = "gascert_admin"

	// CookiePath ensures the cookie is sent with all requests.
	CookiePath = "/"

	// CookieMaxAge sets the cookie expiration (30 days = 2592000 seconds).
	// This should match SessionDuration in the admin service.
	CookieMaxAge = 30 * 24 * 60 * 60
)

// SetCookie sets the admin session cookie on the response.
//
// Cookie settings:
// - HttpOnly: true - not readable from JavaScript
// - Secure: configurable - true in production (HTTPS only)
// - SameSite: Lax - blocks cross-site POSTs while allowing normal navigation
// - MaxAge: 30 days - matches the session duration in the admin service
func SetCookie(w http.ResponseWriter, token string, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     CookiePath,
		MaxAge:   CookieMaxAge,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie removes the session cookie from the client by setting
// MaxAge to -1.
func ClearCookie(w http.ResponseWriter, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     CookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
