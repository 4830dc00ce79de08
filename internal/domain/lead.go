// Package domain contains core business types and interfaces.
//
// This file defines the Lead domain type: a prospective customer's
// gas-safety certificate renewal request, captured by the public
// intake form and worked by the admin dashboard.
package domain

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// emailPattern is a deliberately loose local@domain check. The intake form
// only guards against obvious typos; deliverability is the mail server's
// problem.
var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Lead represents a renewal request captured from the public intake form.
//
// The lead's ID doubles as the booking-completion token: the admin shares
// /complete-booking/{id} with the client, and the completion flow resolves
// it back to this record. IDs are v4 UUIDs, so the link is unguessable.
//
// Leads are never hard-deleted. Soft-deletion sets DeletedAt and removes
// the lead from admin listings and from completion-link resolution.
type Lead struct {
	ID          uuid.UUID
	Address     string
	ClientEmail string
	ExpiryDate  time.Time
	QuotedPrice *Price     // nil until the admin applies a quote
	DeletedAt   *time.Time // nil while the lead is active
	CreatedAt   time.Time
}

// IsDeleted returns true if the lead has been soft-deleted.
func (l *Lead) IsDeleted() bool {
	return l.DeletedAt != nil
}

// HasQuote returns true once an admin has applied a price.
func (l *Lead) HasQuote() bool {
	return l.QuotedPrice != nil
}

// CompletionPath returns the booking-completion route for this lead,
// relative to the application base URL.
func (l *Lead) CompletionPath() string {
	return "/complete-booking/" + l.ID.String()
}

// CreateLeadParams contains the validated parameters for creating a lead.
//
// HasOccupant and OccupantName come from the "property has an on-site
// occupant" section of the intake form. When the flag is set the name is
// required and is appended to the stored address so the engineer knows who
// to ask for on arrival.
type CreateLeadParams struct {
	Address      string
	ClientEmail  string
	ExpiryDate   time.Time
	HasOccupant  bool
	OccupantName string
}

// ValidateIntake checks the intake form fields and returns a map of field
// name to human-readable message for every failing field. An empty map
// means the submission is valid and exactly one insert should follow.
func (p CreateLeadParams) ValidateIntake() map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(p.Address) == "" {
		errs["address"] = "Property address is required"
	}
	if p.ExpiryDate.IsZero() {
		errs["expiry_date"] = "Expiry date is required"
	}
	email := strings.TrimSpace(p.ClientEmail)
	if email == "" {
		errs["client_email"] = "Email is required"
	} else if !emailPattern.MatchString(email) {
		errs["client_email"] = "Please enter a valid email"
	}
	if p.HasOccupant && strings.TrimSpace(p.OccupantName) == "" {
		errs["occupant_name"] = "Occupant name is required"
	}

	return errs
}

// ValidEmail reports whether s matches the basic local@domain pattern
// accepted by the intake form.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// =============================================================================
// Price
// =============================================================================

// Price is a non-negative currency amount in pence, carried with
// two-decimal precision. Stored as an integer to avoid float drift in
// arithmetic and comparisons; the database column is NUMERIC(10,2).
type Price struct {
	Pence int64
}

// ParsePrice parses a decimal string such as "75" or "75.00" into a Price.
// Rejects empty input, negative amounts, and more than two decimal places.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "£"))
	if s == "" {
		return Price{}, fmt.Errorf("price is empty")
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	pounds, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return Price{}, fmt.Errorf("invalid price %q", s)
	}
	if strings.HasPrefix(whole, "-") {
		return Price{}, fmt.Errorf("price must not be negative")
	}

	var pence int64
	if hasFrac {
		// Exactly one or two digits; a bare ParseInt would also accept
		// a sign here and corrupt the amount.
		if !isPenceFraction(frac) {
			return Price{}, fmt.Errorf("price must have at most two decimal places")
		}
		if len(frac) == 1 {
			frac += "0"
		}
		pence, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return Price{}, fmt.Errorf("invalid price %q", s)
		}
	}

	return Price{Pence: pounds*100 + pence}, nil
}

// isPenceFraction reports whether s is one or two ASCII digits.
func isPenceFraction(s string) bool {
	if len(s) == 0 || len(s) > 2 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String returns the bare decimal form, e.g. "75.00". This is the form
// stored in the database and used in mailto links.
func (p Price) String() string {
	return fmt.Sprintf("%d.%02d", p.Pence/100, p.Pence%100)
}

// gbpPrinter formats amounts for en-GB display.
var gbpPrinter = message.NewPrinter(language.BritishEnglish)

// Display returns the customer-facing form, e.g. "£1,250.00".
func (p Price) Display() string {
	return gbpPrinter.Sprintf("£%d.%02d", p.Pence/100, p.Pence%100)
}

// =============================================================================
// Conversion helpers from repository types
// =============================================================================

// NullStringValue safely extracts a string from sql.NullString.
func NullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// NullTimeValue safely extracts a time pointer from sql.NullTime.
func NullTimeValue(nt sql.NullTime) *time.Time {
	if nt.Valid {
		return &nt.Time
	}
	return nil
}

// ToNullString converts a string to sql.NullString.
func ToNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
