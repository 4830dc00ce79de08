// Package handler contains HTTP handlers for the gascert application.
//
// This file implements the admin login and logout handlers.
package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/DukeRupert/gascert/internal/auth"
	"github.com/DukeRupert/gascert/internal/csrf"
	"github.com/DukeRupert/gascert/internal/domain"
	"github.com/DukeRupert/gascert/internal/service"
	"github.com/DukeRupert/gascert/internal/session"
)

// TemplateRenderer is the interface for rendering HTML templates.
// This interface allows for mocking in tests.
type TemplateRenderer interface {
	RenderHTTP(w http.ResponseWriter, name string, data interface{})
	RenderHTTPStatus(w http.ResponseWriter, status int, name string, data interface{})
}

// Flash represents a flash message to display to the user.
//
// The Type field determines styling in templates:
// - "success" -> green
// - "error"   -> red
// - "info"    -> blue
type Flash struct {
	Type    string
	Message string
}

// AuthPageData contains the data for the login page template.
type AuthPageData struct {
	CurrentPath string
	CSRFToken   string
	Form        map[string]string
	Errors      map[string]string
	Flash       *Flash
	ReturnTo    string
}

// AuthHandler handles admin login and logout.
//
// Routes handled:
// - GET  /login  -> ShowLogin
// - POST /login  -> Login
// - POST /logout -> Logout
type AuthHandler struct {
	adminService service.AdminService
	renderer     TemplateRenderer
	logger       *slog.Logger
	isSecure     bool
}

// NewAuthHandler creates a new AuthHandler with the required dependencies.
func NewAuthHandler(
	adminService service.AdminService,
	renderer TemplateRenderer,
	logger *slog.Logger,
	isSecure bool,
) *AuthHandler {
	return &AuthHandler{
		adminService: adminService,
		renderer:     renderer,
		logger:       logger,
		isSecure:     isSecure,
	}
}

// ShowLogin renders the login form.
//
// Template: public/login
//
// Query Parameters:
// - return_to (optional): URL to redirect to after successful login
// - logout=1: show a "logged out" flash
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	// Already logged in - straight to the dashboard
	if auth.IsAdminRequest(r) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	var flash *Flash
	if r.URL.Query().Get("logout") == "1" {
		flash = &Flash{Type: "info", Message: "You have been logged out."}
	}

	data := AuthPageData{
		CurrentPath: r.URL.Path,
		CSRFToken:   csrf.EnsureToken(w, r, h.isSecure),
		Form:        make(map[string]string),
		Errors:      make(map[string]string),
		Flash:       flash,
		ReturnTo:    r.URL.Query().Get("return_to"),
	}

	h.renderer.RenderHTTP(w, "public/login", data)
}

// Login processes the login form submission.
//
// Form Fields:
// - username (required)
// - password (required)
//
// On success a session token is minted and stored in the session cookie,
// then the admin is redirected to return_to (if safe) or /admin. On
// failure the form is re-rendered with a flash; the password is never
// echoed back.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.Error("failed to parse login form", "error", err)
		h.renderLoginError(w, r, nil, &Flash{
			Type:    "error",
			Message: "Invalid form submission. Please try again.",
		})
		return
	}

	if !csrf.ValidateRequest(r) {
		h.renderLoginError(w, r, nil, &Flash{
			Type:    "error",
			Message: "Invalid security token. Please try again.",
		})
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	returnTo := r.FormValue("return_to")

	formValues := map[string]string{
		"Username": username,
	}

	token, err := h.adminService.Login(r.Context(), username, password)
	if err != nil {
		if domain.ErrorCode(err) == domain.EUNAUTHORIZED {
			h.renderLoginError(w, r, formValues, &Flash{
				Type:    "error",
				Message: "Invalid username or password",
			})
			return
		}

		h.logger.Error("login failed", "error", err)
		h.renderLoginError(w, r, formValues, &Flash{
			Type:    "error",
			Message: "Login failed. Please try again later.",
		})
		return
	}

	session.SetCookie(w, token, h.isSecure)

	redirectURL := "/admin"
	if returnTo != "" && isSafeRedirectURL(returnTo) {
		redirectURL = returnTo
	}
	http.Redirect(w, r, redirectURL, http.StatusSeeOther)
}

// Logout invalidates the admin session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(session.CookieName)
	if err == nil && cookie.Value != "" {
		h.adminService.Logout(r.Context(), cookie.Value)
	}

	// Clear the cookie regardless of whether a session existed
	session.ClearCookie(w, h.isSecure)

	http.Redirect(w, r, "/login?logout=1", http.StatusSeeOther)
}

// renderLoginError re-renders the login form with errors.
func (h *AuthHandler) renderLoginError(w http.ResponseWriter, r *http.Request, formValues map[string]string, flash *Flash) {
	if formValues == nil {
		formValues = make(map[string]string)
	}

	data := AuthPageData{
		CurrentPath: r.URL.Path,
		CSRFToken:   csrf.EnsureToken(w, r, h.isSecure),
		Form:        formValues,
		Errors:      make(map[string]string),
		Flash:       flash,
		ReturnTo:    r.FormValue("return_to"),
	}

	h.renderer.RenderHTTPStatus(w, http.StatusUnauthorized, "public/login", data)
}

// isSafeRedirectURL reports whether a post-login redirect target stays
// on this site. Rejects absolute and protocol-relative URLs.
func isSafeRedirectURL(rawURL string) bool {
	if !strings.HasPrefix(rawURL, "/") {
		return false
	}
	if strings.HasPrefix(rawURL, "//") {
		return false
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if parsed.Scheme != "" || parsed.Host != "" {
		return false
	}

	return true
}
