package email

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/DukeRupert/gascert/internal/domain"
)

// GenerateMailtoLink builds a mailto: URL pre-filled with the quote email,
// used as a fallback when no SMTP server is configured. The admin clicks
// the link and sends the email from their own mail client.
func GenerateMailtoLink(lead *domain.Lead, baseURL string) string {
	bookingURL := strings.TrimSuffix(baseURL, "/") + lead.CompletionPath()

	quote := "Not quoted yet"
	if lead.HasQuote() {
		quote = "£" + lead.QuotedPrice.String()
	}

	subject := fmt.Sprintf("Gas Safety Certificate Renewal Quote - %s", lead.Address)

	body := fmt.Sprintf(`Dear Customer,

Thank you for your interest in our gas safety certificate renewal service.

Property Address: %s
Certificate Expiry: %s
Proposed Quote: %s

To accept the quote and arrange access, please complete your booking here:

%s

Best regards,
Gas Safety Team
`, lead.Address, lead.ExpiryDate.Format("02/01/2006"), quote, bookingURL)

	params := url.Values{}
	params.Set("subject", subject)
	params.Set("body", body)

	// url.Values encodes spaces as "+", which mail clients do not decode
	// inside mailto links. Use %20 instead.
	query := strings.ReplaceAll(params.Encode(), "+", "%20")

	return "mailto:" + lead.ClientEmail + "?" + query
}
