package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCreateBookingParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		params  CreateBookingParams
		wantErr bool
	}{
		{"name present", CreateBookingParams{ContactName: "J Smith"}, false},
		{"name with optional fields", CreateBookingParams{ContactName: "J Smith", ContactPhone: "+44 7700 900000", ContactEmail: "j@smith.com"}, false},
		{"missing name", CreateBookingParams{ContactPhone: "+44 7700 900000"}, true},
		{"whitespace name", CreateBookingParams{ContactName: "   "}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.params.Validate()
			if tt.wantErr {
				assert.Contains(t, errs, "contact_name")
			} else {
				assert.Empty(t, errs)
			}
		})
	}
}

func TestBookingDetailClipboardText(t *testing.T) {
	leadID := uuid.New()
	detail := BookingDetail{
		Booking: ConfirmedBooking{
			ID:          uuid.New(),
			LeadID:      leadID,
			ContactName: "J Smith",
			CreatedAt:   time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		},
		Lead: Lead{
			ID:          leadID,
			Address:     "1 Test St",
			ClientEmail: "a@b.com",
			ExpiryDate:  time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
			QuotedPrice: &Price{Pence: 7500},
		},
	}

	text := detail.ClipboardText()

	assert.Contains(t, text, "1 Test St")
	assert.Contains(t, text, "a@b.com")
	assert.Contains(t, text, "01/01/2030")
	assert.Contains(t, text, "£75.00")
	assert.Contains(t, text, "J Smith")
	// Optional fields render as placeholders, not blanks.
	assert.Contains(t, text, "Contact Phone: -")
	assert.Contains(t, text, "Contact Email: -")
}

func TestBookingDetailClipboardTextUnquoted(t *testing.T) {
	detail := BookingDetail{
		Booking: ConfirmedBooking{ContactName: "J Smith"},
		Lead:    Lead{Address: "1 Test St", ClientEmail: "a@b.com"},
	}

	text := detail.ClipboardText()
	assert.Contains(t, text, "Not quoted")
	assert.False(t, strings.Contains(text, "£"), "unquoted booking should not render a price")
}
