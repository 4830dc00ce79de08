package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Lead mirrors a row of the leads table.
type Lead struct {
	ID          uuid.UUID
	Address     string
	ClientEmail string
	ExpiryDate  time.Time
	QuotedPrice sql.NullString // NUMERIC(10,2), scanned as text
	DeletedAt   sql.NullTime
	CreatedAt   time.Time
}

const createLead = `
INSERT INTO leads (address, client_email, expiry_date)
VALUES ($1, $2, $3)
RETURNING id, address, client_email, expiry_date, quoted_price, deleted_at, created_at
`

// CreateLeadParams contains the values for a new lead row.
type CreateLeadParams struct {
	Address     string
	ClientEmail string
	ExpiryDate  time.Time
}

// CreateLead inserts one lead with a null quoted price and returns the row.
func (q *Queries) CreateLead(ctx context.Context, arg CreateLeadParams) (Lead, error) {
	row := q.db.QueryRowContext(ctx, createLead, arg.Address, arg.ClientEmail, arg.ExpiryDate)
	return scanLead(row)
}

const getLeadByID = `
SELECT id, address, client_email, expiry_date, quoted_price, deleted_at, created_at
FROM leads
WHERE id = $1
`

// GetLeadByID fetches a lead regardless of deletion state. Callers decide
// whether a soft-deleted lead is acceptable.
func (q *Queries) GetLeadByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := q.db.QueryRowContext(ctx, getLeadByID, id)
	return scanLead(row)
}

const getActiveLeadByID = `
SELECT id, address, client_email, expiry_date, quoted_price, deleted_at, created_at
FROM leads
WHERE id = $1 AND deleted_at IS NULL
`

// GetActiveLeadByID fetches a lead that has not been soft-deleted.
// The completion flow resolves share tokens through this query, so deleted
// leads produce sql.ErrNoRows like any other unknown token.
func (q *Queries) GetActiveLeadByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := q.db.QueryRowContext(ctx, getActiveLeadByID, id)
	return scanLead(row)
}

const listActiveLeads = `
SELECT id, address, client_email, expiry_date, quoted_price, deleted_at, created_at
FROM leads
WHERE deleted_at IS NULL
ORDER BY created_at DESC
`

// ListActiveLeads returns all non-soft-deleted leads, newest first.
func (q *Queries) ListActiveLeads(ctx context.Context) ([]Lead, error) {
	rows, err := q.db.QueryContext(ctx, listActiveLeads)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		var l Lead
		if err := rows.Scan(
			&l.ID,
			&l.Address,
			&l.ClientEmail,
			&l.ExpiryDate,
			&l.QuotedPrice,
			&l.DeletedAt,
			&l.CreatedAt,
		); err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

const updateLeadQuotes = `
UPDATE leads
SET quoted_price = $1
WHERE id = ANY($2::uuid[]) AND deleted_at IS NULL
`

// UpdateLeadQuotesParams contains the bulk quote update values.
type UpdateLeadQuotesParams struct {
	QuotedPrice string
	IDs         []uuid.UUID
}

// UpdateLeadQuotes sets quoted_price on every lead in IDs with a single
// statement and returns the number of rows updated.
func (q *Queries) UpdateLeadQuotes(ctx context.Context, arg UpdateLeadQuotesParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateLeadQuotes, arg.QuotedPrice, pq.Array(uuidStrings(arg.IDs)))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const softDeleteLeads = `
UPDATE leads
SET deleted_at = now()
WHERE id = ANY($1::uuid[]) AND deleted_at IS NULL
`

// SoftDeleteLeads marks every lead in ids as deleted. Rows are never
// removed; subsequent listings simply exclude them.
func (q *Queries) SoftDeleteLeads(ctx context.Context, ids []uuid.UUID) (int64, error) {
	res, err := q.db.ExecContext(ctx, softDeleteLeads, pq.Array(uuidStrings(ids)))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// uuidStrings converts UUIDs to their text form for pq.Array, which the
// ANY($n) filters compare against after a ::uuid cast by the server.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func scanLead(row *sql.Row) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID,
		&l.Address,
		&l.ClientEmail,
		&l.ExpiryDate,
		&l.QuotedPrice,
		&l.DeletedAt,
		&l.CreatedAt,
	)
	return l, err
}
