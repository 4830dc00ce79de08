package email

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/gascert/internal/domain"
)

func TestGenerateMailtoLink(t *testing.T) {
	price, err := domain.ParsePrice("75.00")
	require.NoError(t, err)

	lead := &domain.Lead{
		ID:          uuid.MustParse("a2f1c9e4-1b2c-4d5e-8f90-123456789abc"),
		Address:     "12 High Street, Bristol",
		ClientEmail: "tenant@example.com",
		ExpiryDate:  time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC),
		QuotedPrice: &price,
	}

	link := GenerateMailtoLink(lead, "https://gascert.app/")

	assert.True(t, strings.HasPrefix(link, "mailto:tenant@example.com?"), "link: %s", link)
	assert.NotContains(t, link, "+", "spaces must be %%20-encoded, not plus-encoded")

	u, err := url.Parse(link)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "Gas Safety Certificate Renewal Quote - 12 High Street, Bristol", q.Get("subject"))

	body := q.Get("body")
	assert.Contains(t, body, "Property Address: 12 High Street, Bristol")
	assert.Contains(t, body, "Certificate Expiry: 15/10/2026")
	assert.Contains(t, body, "Proposed Quote: £75.00")
	assert.Contains(t, body, "https://gascert.app/complete-booking/a2f1c9e4-1b2c-4d5e-8f90-123456789abc")
}

func TestGenerateMailtoLinkWithoutQuote(t *testing.T) {
	lead := &domain.Lead{
		ID:          uuid.New(),
		Address:     "4 Mill Lane",
		ClientEmail: "someone@example.com",
		ExpiryDate:  time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	link := GenerateMailtoLink(lead, "http://localhost:8080")

	u, err := url.Parse(link)
	require.NoError(t, err)

	assert.Contains(t, u.Query().Get("body"), "Proposed Quote: Not quoted yet")
}
