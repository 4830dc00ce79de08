// Package service contains the business logic layer.
//
// This file implements the lead service: intake form submissions and the
// admin dashboard's batch operations over leads.
package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/DukeRupert/gascert/internal/domain"
	"github.com/DukeRupert/gascert/internal/metrics"
	"github.com/DukeRupert/gascert/internal/repository"
	"github.com/google/uuid"
)

// leadStore is the subset of repository queries the lead service uses.
// Declared here so tests can substitute a mock.
type leadStore interface {
	CreateLead(ctx context.Context, arg repository.CreateLeadParams) (repository.Lead, error)
	GetActiveLeadByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	ListActiveLeads(ctx context.Context) ([]repository.Lead, error)
	UpdateLeadQuotes(ctx context.Context, arg repository.UpdateLeadQuotesParams) (int64, error)
	SoftDeleteLeads(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// LeadService defines the interface for lead-related operations.
type LeadService interface {
	// Create validates an intake submission and inserts one lead.
	// Returns *domain.ValidationError carrying per-field messages when
	// the submission is invalid; no insert is attempted in that case.
	Create(ctx context.Context, params domain.CreateLeadParams) (*domain.Lead, error)

	// GetByID retrieves an active (non-deleted) lead.
	// Returns domain.ENOTFOUND if the lead does not exist or is deleted.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error)

	// List retrieves all active leads, newest first.
	List(ctx context.Context) ([]domain.Lead, error)

	// ApplyQuote sets quoted_price on every selected lead with a single
	// bulk update. Returns domain.EINVALID when the selection is empty.
	ApplyQuote(ctx context.Context, selection *domain.Selection, price domain.Price) (int64, error)

	// SoftDelete marks every selected lead as deleted. Rows are never
	// removed. Returns domain.EINVALID when the selection is empty.
	SoftDelete(ctx context.Context, selection *domain.Selection) (int64, error)
}

type leadService struct {
	store  leadStore
	logger *slog.Logger
}

// NewLeadService creates a new LeadService.
func NewLeadService(store leadStore, logger *slog.Logger) LeadService {
	return &leadService{
		store:  store,
		logger: logger,
	}
}

// Create validates an intake submission and inserts one lead.
func (s *leadService) Create(ctx context.Context, params domain.CreateLeadParams) (*domain.Lead, error) {
	const op = "lead.create"

	if fieldErrs := params.ValidateIntake(); len(fieldErrs) > 0 {
		return nil, domain.NewValidationError(op, fieldErrs)
	}

	address := strings.TrimSpace(params.Address)
	if params.HasOccupant {
		// No dedicated occupant column; the engineer reads it off the
		// address block on the job sheet.
		address = fmt.Sprintf("%s\nOccupant: %s", address, strings.TrimSpace(params.OccupantName))
	}

	row, err := s.store.CreateLead(ctx, repository.CreateLeadParams{
		Address:     address,
		ClientEmail: strings.TrimSpace(params.ClientEmail),
		ExpiryDate:  params.ExpiryDate,
	})
	if err != nil {
		return nil, domain.Internal(err, op, "failed to create lead")
	}

	lead := rowToLead(row)
	metrics.LeadsCreated.Inc()

	s.logger.Info("lead created",
		"lead_id", lead.ID,
		"expiry_date", lead.ExpiryDate.Format("2006-01-02"),
	)

	return lead, nil
}

// GetByID retrieves an active lead.
func (s *leadService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	const op = "lead.get"

	row, err := s.store.GetActiveLeadByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "lead", id.String())
		}
		return nil, domain.Internal(err, op, "failed to get lead")
	}

	return rowToLead(row), nil
}

// List retrieves all active leads, newest first.
func (s *leadService) List(ctx context.Context) ([]domain.Lead, error) {
	const op = "lead.list"

	rows, err := s.store.ListActiveLeads(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list leads")
	}

	leads := make([]domain.Lead, 0, len(rows))
	for _, row := range rows {
		leads = append(leads, *rowToLead(row))
	}
	return leads, nil
}

// ApplyQuote sets quoted_price on every selected lead.
func (s *leadService) ApplyQuote(ctx context.Context, selection *domain.Selection, price domain.Price) (int64, error) {
	const op = "lead.apply_quote"

	if selection == nil || selection.IsEmpty() {
		return 0, domain.Invalid(op, "select at least one lead to quote")
	}

	updated, err := s.store.UpdateLeadQuotes(ctx, repository.UpdateLeadQuotesParams{
		QuotedPrice: price.String(),
		IDs:         selection.IDs(),
	})
	if err != nil {
		return 0, domain.Internal(err, op, "failed to apply quote")
	}

	metrics.QuotesApplied.Add(float64(updated))

	s.logger.Info("quote applied",
		"price", price.String(),
		"selected", selection.Count(),
		"updated", updated,
	)

	return updated, nil
}

// SoftDelete marks every selected lead as deleted.
func (s *leadService) SoftDelete(ctx context.Context, selection *domain.Selection) (int64, error) {
	const op = "lead.soft_delete"

	if selection == nil || selection.IsEmpty() {
		return 0, domain.Invalid(op, "select at least one lead to delete")
	}

	deleted, err := s.store.SoftDeleteLeads(ctx, selection.IDs())
	if err != nil {
		return 0, domain.Internal(err, op, "failed to delete leads")
	}

	s.logger.Info("leads soft-deleted",
		"selected", selection.Count(),
		"deleted", deleted,
	)

	return deleted, nil
}

// rowToLead converts a repository lead row to a domain Lead.
func rowToLead(row repository.Lead) *domain.Lead {
	lead := &domain.Lead{
		ID:          row.ID,
		Address:     row.Address,
		ClientEmail: row.ClientEmail,
		ExpiryDate:  row.ExpiryDate,
		DeletedAt:   domain.NullTimeValue(row.DeletedAt),
		CreatedAt:   row.CreatedAt,
	}
	if row.QuotedPrice.Valid {
		if price, err := domain.ParsePrice(row.QuotedPrice.String); err == nil {
			lead.QuotedPrice = &price
		}
	}
	return lead
}
