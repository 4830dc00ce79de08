// Package email provides quote email delivery for leads.
//
// The QuoteEmailService interface is the notification collaborator: it
// sends a quote email carrying the booking-completion link. When no SMTP
// server is configured, SendQuoteEmail returns a domain.ECONFIG error and
// callers fall back to the mailto link from GenerateMailtoLink, which is
// a pure formatter and always available.
package email

import (
	"context"

	"github.com/DukeRupert/gascert/internal/domain"
)

// QuoteEmailService defines the interface for sending quote emails.
type QuoteEmailService interface {
	// SendQuoteEmail sends the quote email for a lead. The lead must
	// have a client email and a quoted price; callers enforce that.
	// Returns a domain.ECONFIG error when the mail collaborator is not
	// configured, which callers downgrade to the mailto fallback.
	SendQuoteEmail(ctx context.Context, lead *domain.Lead) error
}

// Email represents a single email message.
type Email struct {
	To       string // Recipient email address
	Subject  string // Email subject line
	HTMLBody string // HTML content of the email
	TextBody string // Plain text fallback content
}

// SMTPConfig holds SMTP server configuration.
type SMTPConfig struct {
	Host     string // SMTP server hostname (e.g., "localhost" for Mailhog)
	Port     int    // SMTP server port (e.g., 1025 for Mailhog)
	Username string // SMTP authentication username (empty for Mailhog)
	Password string // SMTP authentication password (empty for Mailhog)
	From     string // Default sender email address
	FromName string // Default sender display name
}

const (
	// DefaultFromEmail is the default sender email for quote emails.
	DefaultFromEmail = "noreply@gascert.app"

	// DefaultFromName is the default sender display name.
	DefaultFromName = "Gas Safety Team"
)
