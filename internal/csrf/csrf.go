// Package csrf implements double-submit cookie CSRF protection for the
// intake, login, completion and admin forms.
//
// A random token is issued in a cookie and echoed back in a hidden form
// field; a POST is accepted only when the two match. A cross-site page can
// make the browser send the cookie, but it cannot read it to fill in the
// form field.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
)

const (
	// CookieName is the CSRF token cookie. Deliberately not HttpOnly:
	// the token is not a secret from our own pages, only from other
	// origins.
	CookieName = "csrf_token"

	// FormFieldName is the hidden input every POSTing form carries.
	FormFieldName = "csrf_token"

	// tokenBytes of randomness per token; base64url-encoded to 43 chars.
	tokenBytes = 32

	// cookieMaxAge is one hour. Shorter than the admin session on
	// purpose; EnsureToken reissues silently on the next page load.
	cookieMaxAge = 3600
)

// EnsureToken returns the request's CSRF token, minting one and setting
// the cookie if the request has none. Handlers call this on every GET
// that renders a form.
func EnsureToken(w http.ResponseWriter, r *http.Request, isSecure bool) string {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	token, err := generateToken()
	if err != nil {
		// crypto/rand failing means the process is in no state to serve
		// forms at all.
		panic("csrf: " + err.Error())
	}
	setCookie(w, token, isSecure)
	return token
}

// ValidateRequest reports whether the form's token matches the cookie's.
// The caller must have run ParseForm already.
func ValidateRequest(r *http.Request) bool {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return false
	}
	return validateToken(cookie.Value, r.FormValue(FormFieldName))
}

func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// validateToken compares in constant time; empty on either side fails.
func validateToken(cookieToken, formToken string) bool {
	if cookieToken == "" || formToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookieToken), []byte(formToken)) == 1
}

func setCookie(w http.ResponseWriter, token string, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		Secure:   isSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
