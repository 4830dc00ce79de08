// Package repository provides database access for leads and confirmed
// bookings over PostgreSQL.
//
// Queries are hand-written against database/sql using the pgx stdlib
// driver. Row types mirror column nullability with sql.Null* types; the
// service layer converts them to domain types.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL error code for unique constraint
// violations. See https://www.postgresql.org/docs/current/errcodes-appendix.html
const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint violation.
// The completion flow relies on this to treat a lost insert race as
// "already confirmed" rather than a failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}

// DBTX is the subset of *sql.DB used by Queries. *sql.Tx satisfies it as
// well, so queries can run inside a transaction when one is needed.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries holds a database handle and exposes one method per SQL query.
type Queries struct {
	db DBTX
}

// New creates a Queries instance over the given database handle.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}
