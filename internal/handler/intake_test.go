package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/DukeRupert/gascert/internal/domain"
)

func TestShowForm_RendersIntake(t *testing.T) {
	renderer := &mockRenderer{}
	h := NewIntakeHandler(&mockLeadService{}, renderer, testLogger(), false)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()

	h.ShowForm(rec, req)

	if renderer.name != "public/intake" {
		t.Errorf("expected public/intake template, got %q", renderer.name)
	}

	data, ok := renderer.data.(IntakePageData)
	if !ok {
		t.Fatalf("unexpected data type %T", renderer.data)
	}
	if data.CSRFToken == "" {
		t.Error("expected a CSRF token on the intake form")
	}
}

func TestCreateLead_Success(t *testing.T) {
	var got domain.CreateLeadParams
	svc := &mockLeadService{
		createFn: func(ctx context.Context, params domain.CreateLeadParams) (*domain.Lead, error) {
			got = params
			return &domain.Lead{ID: uuid.New()}, nil
		},
	}

	h := NewIntakeHandler(svc, &mockRenderer{}, testLogger(), false)

	form := url.Values{
		"address":       {"12 High Street, Bristol"},
		"expiry_date":   {"2026-10-15"},
		"client_email":  {"landlord@example.com"},
		"has_occupant":  {"on"},
		"occupant_name": {"J Smith"},
	}

	rec := httptest.NewRecorder()
	h.CreateLead(rec, postForm("/leads", form))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/thank-you" {
		t.Errorf("expected redirect to /thank-you, got %s", loc)
	}

	if got.Address != "12 High Street, Bristol" {
		t.Errorf("unexpected address: %q", got.Address)
	}
	if !got.HasOccupant || got.OccupantName != "J Smith" {
		t.Errorf("occupant fields not passed through: %+v", got)
	}
	want := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	if !got.ExpiryDate.Equal(want) {
		t.Errorf("expected expiry %v, got %v", want, got.ExpiryDate)
	}
}

func TestCreateLead_ValidationErrorsRerender(t *testing.T) {
	svc := &mockLeadService{
		createFn: func(ctx context.Context, params domain.CreateLeadParams) (*domain.Lead, error) {
			return nil, domain.NewValidationError("lead.create", map[string]string{
				"client_email": "Please enter a valid email address",
			})
		},
	}

	renderer := &mockRenderer{}
	h := NewIntakeHandler(svc, renderer, testLogger(), false)

	form := url.Values{
		"address":      {"12 High Street"},
		"expiry_date":  {"2026-10-15"},
		"client_email": {"not-an-email"},
	}

	rec := httptest.NewRecorder()
	h.CreateLead(rec, postForm("/leads", form))

	if renderer.status != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 re-render, got %d", renderer.status)
	}

	data := renderer.data.(IntakePageData)
	if data.Errors["client_email"] == "" {
		t.Error("expected field error for client_email")
	}
	if data.Form["ClientEmail"] != "not-an-email" {
		t.Error("expected submitted value to be preserved")
	}
}

func TestCreateLead_BadExpiryDateSkipsService(t *testing.T) {
	svc := &mockLeadService{
		createFn: func(ctx context.Context, params domain.CreateLeadParams) (*domain.Lead, error) {
			t.Error("service should not be called for an unparseable date")
			return nil, nil
		},
	}

	renderer := &mockRenderer{}
	h := NewIntakeHandler(svc, renderer, testLogger(), false)

	form := url.Values{
		"address":      {"12 High Street"},
		"expiry_date":  {"15/10/2026"},
		"client_email": {"landlord@example.com"},
	}

	rec := httptest.NewRecorder()
	h.CreateLead(rec, postForm("/leads", form))

	if renderer.status != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 re-render, got %d", renderer.status)
	}
	data := renderer.data.(IntakePageData)
	if data.Errors["expiry_date"] == "" {
		t.Error("expected field error for expiry_date")
	}
}

func TestCreateLead_MissingCSRFToken(t *testing.T) {
	svc := &mockLeadService{
		createFn: func(ctx context.Context, params domain.CreateLeadParams) (*domain.Lead, error) {
			t.Error("service should not be called without a CSRF token")
			return nil, nil
		},
	}

	renderer := &mockRenderer{}
	h := NewIntakeHandler(svc, renderer, testLogger(), false)

	form := url.Values{"address": {"12 High Street"}}
	req := httptest.NewRequest("POST", "/leads", nil)
	req.PostForm = form
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	h.CreateLead(rec, req)

	data := renderer.data.(IntakePageData)
	if data.Flash == nil || data.Flash.Type != "error" {
		t.Error("expected an error flash for missing CSRF token")
	}
}
