// Package service contains the business logic layer.
//
// This file implements the booking service: resolving completion tokens
// and recording confirmed bookings.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/DukeRupert/gascert/internal/domain"
	"github.com/DukeRupert/gascert/internal/metrics"
	"github.com/DukeRupert/gascert/internal/repository"
	"github.com/google/uuid"
)

// bookingStore is the subset of repository queries the booking service
// uses. Declared here so tests can substitute a mock.
type bookingStore interface {
	GetActiveLeadByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	CreateConfirmedBooking(ctx context.Context, arg repository.CreateConfirmedBookingParams) (repository.ConfirmedBooking, error)
	GetConfirmedBookingByLeadID(ctx context.Context, leadID uuid.UUID) (repository.ConfirmedBooking, error)
	ListConfirmedBookingsWithLead(ctx context.Context) ([]repository.BookingWithLeadRow, error)
	GetBookingWithLeadByID(ctx context.Context, id uuid.UUID) (repository.BookingWithLeadRow, error)
}

// BookingService defines the interface for booking-completion operations.
type BookingService interface {
	// Resolve maps a completion token to the state of the flow.
	// Unknown tokens (including soft-deleted leads and unparseable
	// values) resolve to CompletionNotFound rather than an error; only
	// infrastructure failures return a non-nil error.
	Resolve(ctx context.Context, token string) (*domain.Completion, error)

	// Complete records contact details against a lead.
	// Returns *domain.ValidationError when the contact name is missing,
	// domain.ENOTFOUND when the lead is unknown or deleted, and
	// domain.ECONFLICT when a booking already exists for the lead (the
	// caller shows the confirmed view; no second row is created).
	Complete(ctx context.Context, params domain.CreateBookingParams) (*domain.ConfirmedBooking, error)

	// ListDetails retrieves all confirmed bookings joined with their
	// parent lead, newest first.
	ListDetails(ctx context.Context) ([]domain.BookingDetail, error)

	// GetDetail retrieves one joined booking for the admin detail view.
	// Returns domain.ENOTFOUND if the booking does not exist.
	GetDetail(ctx context.Context, id uuid.UUID) (*domain.BookingDetail, error)
}

type bookingService struct {
	store  bookingStore
	logger *slog.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(store bookingStore, logger *slog.Logger) BookingService {
	return &bookingService{
		store:  store,
		logger: logger,
	}
}

// Resolve maps a completion token to the state of the flow.
func (s *bookingService) Resolve(ctx context.Context, token string) (*domain.Completion, error) {
	const op = "booking.resolve"

	leadID, err := uuid.Parse(strings.TrimSpace(token))
	if err != nil {
		return &domain.Completion{State: domain.CompletionNotFound}, nil
	}

	leadRow, err := s.store.GetActiveLeadByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.Completion{State: domain.CompletionNotFound}, nil
		}
		return nil, domain.Internal(err, op, "failed to resolve booking link")
	}
	lead := rowToLead(leadRow)

	_, err = s.store.GetConfirmedBookingByLeadID(ctx, leadID)
	switch {
	case err == nil:
		return &domain.Completion{State: domain.CompletionAlreadyConfirmed, Lead: lead}, nil
	case errors.Is(err, sql.ErrNoRows):
		return &domain.Completion{State: domain.CompletionAwaitingDetails, Lead: lead}, nil
	default:
		return nil, domain.Internal(err, op, "failed to resolve booking link")
	}
}

// Complete records contact details against a lead.
func (s *bookingService) Complete(ctx context.Context, params domain.CreateBookingParams) (*domain.ConfirmedBooking, error) {
	const op = "booking.complete"

	if fieldErrs := params.Validate(); len(fieldErrs) > 0 {
		return nil, domain.NewValidationError(op, fieldErrs)
	}

	// Existence check first so an unknown or deleted lead reads as an
	// invalid link, not a foreign-key error. The UNIQUE constraint on
	// lead_id is the backstop for the check-then-insert race.
	if _, err := s.store.GetActiveLeadByID(ctx, params.LeadID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "lead", params.LeadID.String())
		}
		return nil, domain.Internal(err, op, "failed to complete booking")
	}

	row, err := s.store.CreateConfirmedBooking(ctx, repository.CreateConfirmedBookingParams{
		LeadID:       params.LeadID,
		ContactName:  strings.TrimSpace(params.ContactName),
		ContactPhone: domain.ToNullString(strings.TrimSpace(params.ContactPhone)),
		ContactEmail: domain.ToNullString(strings.TrimSpace(params.ContactEmail)),
	})
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, domain.Conflict(op, "this booking has already been confirmed")
		}
		return nil, domain.Internal(err, op, "failed to complete booking")
	}

	booking := rowToBooking(row)
	metrics.BookingsConfirmed.Inc()

	s.logger.Info("booking confirmed",
		"booking_id", booking.ID,
		"lead_id", booking.LeadID,
	)

	return booking, nil
}

// ListDetails retrieves all confirmed bookings joined with their lead.
func (s *bookingService) ListDetails(ctx context.Context) ([]domain.BookingDetail, error) {
	const op = "booking.list"

	rows, err := s.store.ListConfirmedBookingsWithLead(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list bookings")
	}

	details := make([]domain.BookingDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, *rowToBookingDetail(row))
	}
	return details, nil
}

// GetDetail retrieves one joined booking.
func (s *bookingService) GetDetail(ctx context.Context, id uuid.UUID) (*domain.BookingDetail, error) {
	const op = "booking.get"

	row, err := s.store.GetBookingWithLeadByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "booking", id.String())
		}
		return nil, domain.Internal(err, op, "failed to get booking")
	}
	return rowToBookingDetail(row), nil
}

// rowToBooking converts a repository booking row to a domain ConfirmedBooking.
func rowToBooking(row repository.ConfirmedBooking) *domain.ConfirmedBooking {
	return &domain.ConfirmedBooking{
		ID:           row.ID,
		LeadID:       row.LeadID,
		ContactName:  row.ContactName,
		ContactPhone: domain.NullStringValue(row.ContactPhone),
		ContactEmail: domain.NullStringValue(row.ContactEmail),
		CreatedAt:    row.CreatedAt,
	}
}

// rowToBookingDetail converts a joined booking row to a domain BookingDetail.
func rowToBookingDetail(row repository.BookingWithLeadRow) *domain.BookingDetail {
	detail := &domain.BookingDetail{
		Booking: domain.ConfirmedBooking{
			ID:           row.ID,
			LeadID:       row.LeadID,
			ContactName:  row.ContactName,
			ContactPhone: domain.NullStringValue(row.ContactPhone),
			ContactEmail: domain.NullStringValue(row.ContactEmail),
			CreatedAt:    row.CreatedAt,
		},
		Lead: domain.Lead{
			ID:          row.LeadID,
			Address:     row.Address,
			ClientEmail: row.ClientEmail,
			ExpiryDate:  row.ExpiryDate,
		},
	}
	if row.QuotedPrice.Valid {
		if price, err := domain.ParsePrice(row.QuotedPrice.String); err == nil {
			detail.Lead.QuotedPrice = &price
		}
	}
	return detail
}
