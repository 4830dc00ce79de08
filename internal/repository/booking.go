package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// ConfirmedBooking mirrors a row of the confirmed_bookings table.
type ConfirmedBooking struct {
	ID           uuid.UUID
	LeadID       uuid.UUID
	ContactName  string
	ContactPhone sql.NullString
	ContactEmail sql.NullString
	CreatedAt    time.Time
}

const createConfirmedBooking = `
INSERT INTO confirmed_bookings (lead_id, contact_name, contact_phone, contact_email)
VALUES ($1, $2, $3, $4)
RETURNING id, lead_id, contact_name, contact_phone, contact_email, created_at
`

// CreateConfirmedBookingParams contains the values for a new booking row.
type CreateConfirmedBookingParams struct {
	LeadID       uuid.UUID
	ContactName  string
	ContactPhone sql.NullString
	ContactEmail sql.NullString
}

// CreateConfirmedBooking inserts one confirmed booking. The UNIQUE
// constraint on lead_id makes a second insert for the same lead fail with
// a unique violation; callers detect that with IsUniqueViolation.
func (q *Queries) CreateConfirmedBooking(ctx context.Context, arg CreateConfirmedBookingParams) (ConfirmedBooking, error) {
	row := q.db.QueryRowContext(ctx, createConfirmedBooking,
		arg.LeadID,
		arg.ContactName,
		arg.ContactPhone,
		arg.ContactEmail,
	)
	return scanBooking(row)
}

const getConfirmedBookingByLeadID = `
SELECT id, lead_id, contact_name, contact_phone, contact_email, created_at
FROM confirmed_bookings
WHERE lead_id = $1
`

// GetConfirmedBookingByLeadID fetches the booking for a lead, if any.
func (q *Queries) GetConfirmedBookingByLeadID(ctx context.Context, leadID uuid.UUID) (ConfirmedBooking, error) {
	row := q.db.QueryRowContext(ctx, getConfirmedBookingByLeadID, leadID)
	return scanBooking(row)
}

// BookingWithLeadRow is a confirmed booking joined with its parent lead's
// details for the admin listing and detail view.
type BookingWithLeadRow struct {
	ID           uuid.UUID
	LeadID       uuid.UUID
	ContactName  string
	ContactPhone sql.NullString
	ContactEmail sql.NullString
	CreatedAt    time.Time

	Address     string
	ClientEmail string
	ExpiryDate  time.Time
	QuotedPrice sql.NullString
}

const bookingWithLeadColumns = `
SELECT b.id, b.lead_id, b.contact_name, b.contact_phone, b.contact_email, b.created_at,
       l.address, l.client_email, l.expiry_date, l.quoted_price
FROM confirmed_bookings b
JOIN leads l ON l.id = b.lead_id
`

const listConfirmedBookingsWithLead = bookingWithLeadColumns + `
ORDER BY b.created_at DESC
`

// ListConfirmedBookingsWithLead returns all bookings joined with their
// parent lead, newest first. Bookings for soft-deleted leads still appear:
// deleting a lead hides the lead, not an already-confirmed job.
func (q *Queries) ListConfirmedBookingsWithLead(ctx context.Context) ([]BookingWithLeadRow, error) {
	rows, err := q.db.QueryContext(ctx, listConfirmedBookingsWithLead)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BookingWithLeadRow
	for rows.Next() {
		var r BookingWithLeadRow
		if err := rows.Scan(
			&r.ID,
			&r.LeadID,
			&r.ContactName,
			&r.ContactPhone,
			&r.ContactEmail,
			&r.CreatedAt,
			&r.Address,
			&r.ClientEmail,
			&r.ExpiryDate,
			&r.QuotedPrice,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const getBookingWithLeadByID = bookingWithLeadColumns + `
WHERE b.id = $1
`

// GetBookingWithLeadByID fetches one joined booking row for the detail view.
func (q *Queries) GetBookingWithLeadByID(ctx context.Context, id uuid.UUID) (BookingWithLeadRow, error) {
	var r BookingWithLeadRow
	err := q.db.QueryRowContext(ctx, getBookingWithLeadByID, id).Scan(
		&r.ID,
		&r.LeadID,
		&r.ContactName,
		&r.ContactPhone,
		&r.ContactEmail,
		&r.CreatedAt,
		&r.Address,
		&r.ClientEmail,
		&r.ExpiryDate,
		&r.QuotedPrice,
	)
	return r, err
}

func scanBooking(row *sql.Row) (ConfirmedBooking, error) {
	var b ConfirmedBooking
	err := row.Scan(
		&b.ID,
		&b.LeadID,
		&b.ContactName,
		&b.ContactPhone,
		&b.ContactEmail,
		&b.CreatedAt,
	)
	return b, err
}
