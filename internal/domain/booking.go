// Package domain contains core business types and interfaces.
//
// This file defines the ConfirmedBooking domain type and the completion
// flow state machine.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ConfirmedBooking records acceptance of a quote and the on-site contact
// details provided through the booking-completion link.
//
// A booking references exactly one lead. The confirmed_bookings table
// carries a UNIQUE constraint on lead_id, so a lead can never accumulate a
// second booking even when two completions race: the loser's insert fails
// with a conflict, which the completion flow reports as already confirmed.
//
// Bookings are immutable once created. They are read by the admin
// dashboard joined with the parent lead's details.
type ConfirmedBooking struct {
	ID           uuid.UUID
	LeadID       uuid.UUID
	ContactName  string
	ContactPhone string // optional
	ContactEmail string // optional
	CreatedAt    time.Time
}

// CreateBookingParams contains the parameters for completing a booking.
type CreateBookingParams struct {
	LeadID       uuid.UUID
	ContactName  string
	ContactPhone string
	ContactEmail string
}

// Validate checks the completion form fields. Only the contact name is
// required; phone and email are optional.
func (p CreateBookingParams) Validate() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(p.ContactName) == "" {
		errs["contact_name"] = "Contact name is required"
	}
	return errs
}

// BookingDetail is a confirmed booking joined with its parent lead, as
// listed on the admin dashboard and shown in the detail view.
type BookingDetail struct {
	Booking ConfirmedBooking
	Lead    Lead
}

// ClipboardText serializes the joined fields into the fixed plain-text
// layout behind the "copy all details" action.
func (d BookingDetail) ClipboardText() string {
	quote := "Not quoted"
	if d.Lead.HasQuote() {
		quote = d.Lead.QuotedPrice.Display()
	}
	phone := d.Booking.ContactPhone
	if phone == "" {
		phone = "-"
	}
	email := d.Booking.ContactEmail
	if email == "" {
		email = "-"
	}

	return fmt.Sprintf(`Booking %s
Property Address: %s
Client Email: %s
Certificate Expiry: %s
Quoted Price: %s
Contact Name: %s
Contact Phone: %s
Contact Email: %s
Confirmed: %s
`,
		d.Booking.ID,
		d.Lead.Address,
		d.Lead.ClientEmail,
		d.Lead.ExpiryDate.Format("02/01/2006"),
		quote,
		d.Booking.ContactName,
		phone,
		email,
		d.Booking.CreatedAt.Format("02/01/2006 15:04"),
	)
}

// =============================================================================
// Completion flow state
// =============================================================================

// CompletionState is the state of the booking-completion flow after the
// share token has been resolved.
//
// State machine:
//
//	Loading -> NotFound                 (token does not resolve)
//	Loading -> AlreadyConfirmed         (a booking already references the lead)
//	Loading -> AwaitingContactDetails   (lead found, no booking yet)
//	AwaitingContactDetails -> Confirmed (contact details recorded)
type CompletionState string

const (
	CompletionNotFound         CompletionState = "not_found"
	CompletionAlreadyConfirmed CompletionState = "already_confirmed"
	CompletionAwaitingDetails  CompletionState = "awaiting_contact_details"
	CompletionConfirmed        CompletionState = "confirmed"
)

// Completion is the resolved state of a booking-completion token.
// Lead is set for every state except NotFound.
type Completion struct {
	State CompletionState
	Lead  *Lead
}
