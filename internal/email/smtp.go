package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"path/filepath"
	"strings"
	"time"

	"github.com/DukeRupert/gascert/internal/domain"
	"github.com/DukeRupert/gascert/internal/metrics"
)

// SMTPQuoteEmailService sends quote emails via SMTP.
//
// Works with Mailhog (development, no authentication) and any standard
// SMTP relay in production. The HTML body comes from a template in the
// email templates directory; a plain-text part is always included.
type SMTPQuoteEmailService struct {
	config    SMTPConfig
	baseURL   string
	templates *template.Template
	logger    *slog.Logger
}

// NewSMTPQuoteEmailService creates a new SMTP-based quote email service.
//
// Parameters:
// - config: SMTP server configuration
// - baseURL: Application base URL for the booking-completion link
// - templatesDir: Path to email templates directory (e.g., "web/templates/email")
// - logger: Structured logger for delivery reporting
func NewSMTPQuoteEmailService(
	config SMTPConfig,
	baseURL string,
	templatesDir string,
	logger *slog.Logger,
) (*SMTPQuoteEmailService, error) {
	if config.From == "" {
		config.From = DefaultFromEmail
	}
	if config.FromName == "" {
		config.FromName = DefaultFromName
	}

	pattern := filepath.Join(templatesDir, "*.html")
	templates, err := template.New("email").Funcs(emailTemplateFuncs()).ParseGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &SMTPQuoteEmailService{
		config:    config,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		templates: templates,
		logger:    logger,
	}, nil
}

// SendQuoteEmail sends the quote email for a lead.
func (s *SMTPQuoteEmailService) SendQuoteEmail(ctx context.Context, lead *domain.Lead) error {
	const op = "email.send_quote"

	if s.config.Host == "" {
		return domain.NotConfigured(op, "quote email service is not configured")
	}

	bookingURL := s.baseURL + lead.CompletionPath()

	quote := "Not quoted yet"
	if lead.HasQuote() {
		quote = lead.QuotedPrice.Display()
	}

	data := map[string]interface{}{
		"Address":    lead.Address,
		"ExpiryDate": lead.ExpiryDate.Format("02/01/2006"),
		"Quote":      quote,
		"BookingURL": bookingURL,
		"Year":       time.Now().Year(),
	}

	htmlBody, err := s.renderTemplate("quote.html", data)
	if err != nil {
		return fmt.Errorf("failed to render quote email template: %w", err)
	}

	textBody := fmt.Sprintf(`Dear Customer,

Thank you for your interest in our gas safety certificate renewal service.

Property Address: %s
Certificate Expiry: %s
Proposed Quote: %s

To accept the quote and arrange access, please complete your booking here:

%s

Best regards,
Gas Safety Team
`, lead.Address, lead.ExpiryDate.Format("02/01/2006"), quote, bookingURL)

	msg := Email{
		To:       lead.ClientEmail,
		Subject:  fmt.Sprintf("Gas Safety Certificate Renewal Quote - %s", lead.Address),
		HTMLBody: htmlBody,
		TextBody: textBody,
	}

	if err := s.send(ctx, msg); err != nil {
		metrics.QuoteEmailsSent.WithLabelValues("failed").Inc()
		return err
	}

	metrics.QuoteEmailsSent.WithLabelValues("sent").Inc()
	return nil
}

// send sends an email via SMTP.
func (s *SMTPQuoteEmailService) send(ctx context.Context, email Email) error {
	msg := s.buildMessage(email)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	// Auth only when credentials are provided (not needed for Mailhog)
	var auth smtp.Auth
	if s.config.Username != "" && s.config.Password != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	err := smtp.SendMail(addr, auth, s.config.From, []string{email.To}, msg)
	if err != nil {
		s.logger.Error("failed to send email",
			"to", email.To,
			"subject", email.Subject,
			"error", err,
		)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent",
		"to", email.To,
		"subject", email.Subject,
	)

	return nil
}

// buildMessage constructs the raw email message with headers.
func (s *SMTPQuoteEmailService) buildMessage(email Email) []byte {
	var buf bytes.Buffer

	fromHeader := fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)

	buf.WriteString(fmt.Sprintf("From: %s\r\n", fromHeader))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", email.To))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")

	// Multipart message for HTML + text
	boundary := "===============GASCERT_BOUNDARY==============="
	buf.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary))
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(email.TextBody)
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	buf.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(email.HTMLBody)
	buf.WriteString("\r\n")

	buf.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	return buf.Bytes()
}

// renderTemplate renders an email template with the given data.
func (s *SMTPQuoteEmailService) renderTemplate(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// emailTemplateFuncs returns template functions available in email templates.
func emailTemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"currentYear": func() int {
			return time.Now().Year()
		},
	}
}

// NotConfiguredQuoteEmailService is the implementation used when no SMTP
// host is configured. Every send reports a configuration error, which the
// admin dashboard downgrades to the mailto fallback.
type NotConfiguredQuoteEmailService struct{}

// SendQuoteEmail always returns a domain.ECONFIG error.
func (NotConfiguredQuoteEmailService) SendQuoteEmail(ctx context.Context, lead *domain.Lead) error {
	return domain.NotConfigured("email.send_quote", "quote email service is not configured")
}

// Compile-time interface checks
var (
	_ QuoteEmailService = (*SMTPQuoteEmailService)(nil)
	_ QuoteEmailService = NotConfiguredQuoteEmailService{}
)
