package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/DukeRupert/gascert/internal/domain"
)

func newAdminHandler(leads *mockLeadService, bookings *mockBookingService, emailSvc *mockQuoteEmailService, renderer *mockRenderer, emailConfigured bool) *AdminHandler {
	if emailSvc == nil {
		emailSvc = &mockQuoteEmailService{
			sendFn: func(ctx context.Context, lead *domain.Lead) error { return nil },
		}
	}
	return NewAdminHandler(leads, bookings, emailSvc, renderer, testLogger(), "http://localhost:8080", emailConfigured, false)
}

func TestDashboard_RendersLeadsAndBookings(t *testing.T) {
	leadID := uuid.New()
	leads := &mockLeadService{
		listFn: func(ctx context.Context) ([]domain.Lead, error) {
			return []domain.Lead{{ID: leadID, Address: "12 High Street"}}, nil
		},
	}
	bookings := &mockBookingService{
		listDetailsFn: func(ctx context.Context) ([]domain.BookingDetail, error) {
			return []domain.BookingDetail{{Booking: domain.ConfirmedBooking{ID: uuid.New()}}}, nil
		},
	}

	renderer := &mockRenderer{}
	h := newAdminHandler(leads, bookings, nil, renderer, true)

	rec := httptest.NewRecorder()
	h.Dashboard(rec, httptest.NewRequest("GET", "/admin", nil))

	if renderer.name != "admin/dashboard" {
		t.Fatalf("expected dashboard template, got %q", renderer.name)
	}

	data := renderer.data.(DashboardData)
	if len(data.Leads) != 1 || len(data.Bookings) != 1 {
		t.Errorf("expected 1 lead and 1 booking, got %d and %d", len(data.Leads), len(data.Bookings))
	}
	if data.Leads[0].MailtoLink != "" {
		t.Error("expected no mailto link when email is configured")
	}
}

func TestDashboard_MailtoFallbackWhenEmailNotConfigured(t *testing.T) {
	leads := &mockLeadService{
		listFn: func(ctx context.Context) ([]domain.Lead, error) {
			return []domain.Lead{{ID: uuid.New(), ClientEmail: "tenant@example.com"}}, nil
		},
	}
	bookings := &mockBookingService{
		listDetailsFn: func(ctx context.Context) ([]domain.BookingDetail, error) { return nil, nil },
	}

	renderer := &mockRenderer{}
	h := newAdminHandler(leads, bookings, nil, renderer, false)

	rec := httptest.NewRecorder()
	h.Dashboard(rec, httptest.NewRequest("GET", "/admin", nil))

	data := renderer.data.(DashboardData)
	if !strings.HasPrefix(data.Leads[0].MailtoLink, "mailto:tenant@example.com") {
		t.Errorf("expected mailto fallback link, got %q", data.Leads[0].MailtoLink)
	}
}

func TestDashboard_PartialLoadFailure(t *testing.T) {
	leads := &mockLeadService{
		listFn: func(ctx context.Context) ([]domain.Lead, error) {
			return []domain.Lead{{ID: uuid.New()}}, nil
		},
	}
	bookings := &mockBookingService{
		listDetailsFn: func(ctx context.Context) ([]domain.BookingDetail, error) {
			return nil, domain.Internal(nil, "booking.list", "query failed")
		},
	}

	renderer := &mockRenderer{}
	h := newAdminHandler(leads, bookings, nil, renderer, true)

	rec := httptest.NewRecorder()
	h.Dashboard(rec, httptest.NewRequest("GET", "/admin", nil))

	data := renderer.data.(DashboardData)
	if len(data.Leads) != 1 {
		t.Error("expected surviving lead list to render")
	}
	if data.Flash == nil || data.Flash.Type != "error" {
		t.Error("expected an error flash for the failed list")
	}
}

func TestDashboard_HighlightsLeadsFromQuery(t *testing.T) {
	id1, id2 := uuid.New(), uuid.New()
	leads := &mockLeadService{
		listFn: func(ctx context.Context) ([]domain.Lead, error) {
			return []domain.Lead{{ID: id1}, {ID: id2}}, nil
		},
	}
	bookings := &mockBookingService{
		listDetailsFn: func(ctx context.Context) ([]domain.BookingDetail, error) { return nil, nil },
	}

	renderer := &mockRenderer{}
	h := newAdminHandler(leads, bookings, nil, renderer, true)

	rec := httptest.NewRecorder()
	h.Dashboard(rec, httptest.NewRequest("GET", "/admin?quoted=1&highlight="+id1.String(), nil))

	data := renderer.data.(DashboardData)
	if !data.Leads[0].Highlighted || data.Leads[1].Highlighted {
		t.Error("expected only the first lead to be highlighted")
	}
	if data.Flash == nil || data.Flash.Type != "success" {
		t.Error("expected a success flash from quoted=1")
	}
}

func TestApplyQuote_RedirectsWithHighlight(t *testing.T) {
	id := uuid.New()

	leads := &mockLeadService{
		applyQuoteFn: func(ctx context.Context, selection *domain.Selection, price domain.Price) (int64, error) {
			if !selection.Contains(id) {
				t.Error("expected selection to contain the posted lead id")
			}
			if price.String() != "75.00" {
				t.Errorf("expected price 75.00, got %s", price.String())
			}
			return 1, nil
		},
	}

	h := newAdminHandler(leads, &mockBookingService{}, nil, &mockRenderer{}, true)

	form := url.Values{
		"lead_ids": {id.String()},
		"price":    {"75"},
	}

	rec := httptest.NewRecorder()
	h.ApplyQuote(rec, postForm("/admin/quote", form))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "quoted=1") || !strings.Contains(loc, id.String()) {
		t.Errorf("unexpected redirect location: %s", loc)
	}
}

func TestApplyQuote_InvalidPrice(t *testing.T) {
	leads := &mockLeadService{
		applyQuoteFn: func(ctx context.Context, selection *domain.Selection, price domain.Price) (int64, error) {
			t.Error("service should not be called for an invalid price")
			return 0, nil
		},
	}

	h := newAdminHandler(leads, &mockBookingService{}, nil, &mockRenderer{}, true)

	form := url.Values{
		"lead_ids": {uuid.NewString()},
		"price":    {"-5"},
	}

	rec := httptest.NewRecorder()
	h.ApplyQuote(rec, postForm("/admin/quote", form))

	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "err=") {
		t.Errorf("expected error redirect, got %s", loc)
	}
	if !strings.Contains(loc, "price=-5") {
		t.Errorf("expected submitted price to survive the redirect, got %s", loc)
	}
}

func TestApplyQuote_EmptySelection(t *testing.T) {
	leads := &mockLeadService{
		applyQuoteFn: func(ctx context.Context, selection *domain.Selection, price domain.Price) (int64, error) {
			t.Error("service should not be called for an empty selection")
			return 0, nil
		},
	}

	h := newAdminHandler(leads, &mockBookingService{}, nil, &mockRenderer{}, true)

	form := url.Values{"price": {"75.00"}}

	rec := httptest.NewRecorder()
	h.ApplyQuote(rec, postForm("/admin/quote", form))

	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "err=") {
		t.Errorf("expected error redirect, got %s", loc)
	}
}

func TestDeleteLeads_Redirects(t *testing.T) {
	id1, id2 := uuid.New(), uuid.New()

	leads := &mockLeadService{
		softDeleteFn: func(ctx context.Context, selection *domain.Selection) (int64, error) {
			if selection.Count() != 2 {
				t.Errorf("expected 2 selected leads, got %d", selection.Count())
			}
			return 2, nil
		},
	}

	h := newAdminHandler(leads, &mockBookingService{}, nil, &mockRenderer{}, true)

	form := url.Values{"lead_ids": {id1.String(), id2.String()}}

	rec := httptest.NewRecorder()
	h.DeleteLeads(rec, postForm("/admin/delete", form))

	if loc := rec.Header().Get("Location"); loc != "/admin?deleted=2" {
		t.Errorf("unexpected redirect location: %s", loc)
	}
}

func TestSendQuoteEmail_Success(t *testing.T) {
	id := uuid.New()
	lead := &domain.Lead{ID: id, ClientEmail: "tenant@example.com", QuotedPrice: &domain.Price{Pence: 7500}}

	leads := &mockLeadService{
		getByIDFn: func(ctx context.Context, got uuid.UUID) (*domain.Lead, error) {
			return lead, nil
		},
	}
	emailSvc := &mockQuoteEmailService{
		sendFn: func(ctx context.Context, l *domain.Lead) error {
			if l.ID != id {
				t.Error("expected the loaded lead to be passed to the email service")
			}
			return nil
		},
	}

	h := newAdminHandler(leads, &mockBookingService{}, emailSvc, &mockRenderer{}, true)

	req := postForm("/admin/leads/"+id.String()+"/email", url.Values{})
	req.SetPathValue("id", id.String())

	rec := httptest.NewRecorder()
	h.SendQuoteEmail(rec, req)

	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "emailed=1") {
		t.Errorf("expected emailed=1 redirect, got %s", loc)
	}
}

func TestSendQuoteEmail_RequiresQuote(t *testing.T) {
	id := uuid.New()

	leads := &mockLeadService{
		getByIDFn: func(ctx context.Context, got uuid.UUID) (*domain.Lead, error) {
			return &domain.Lead{ID: id, ClientEmail: "tenant@example.com"}, nil
		},
	}
	emailSvc := &mockQuoteEmailService{
		sendFn: func(ctx context.Context, l *domain.Lead) error {
			t.Error("no email should be sent for an unquoted lead")
			return nil
		},
	}

	h := newAdminHandler(leads, &mockBookingService{}, emailSvc, &mockRenderer{}, true)

	req := postForm("/admin/leads/"+id.String()+"/email", url.Values{})
	req.SetPathValue("id", id.String())

	rec := httptest.NewRecorder()
	h.SendQuoteEmail(rec, req)

	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "err=") {
		t.Errorf("expected error redirect for unquoted lead, got %s", loc)
	}
}

func TestSendQuoteEmail_FailureOffersMailto(t *testing.T) {
	id := uuid.New()
	lead := &domain.Lead{ID: id, ClientEmail: "tenant@example.com", QuotedPrice: &domain.Price{Pence: 7500}}

	leads := &mockLeadService{
		getByIDFn: func(ctx context.Context, got uuid.UUID) (*domain.Lead, error) {
			return lead, nil
		},
	}
	emailSvc := &mockQuoteEmailService{
		sendFn: func(ctx context.Context, l *domain.Lead) error {
			return domain.Internal(nil, "email.send_quote", "smtp connection refused")
		},
	}

	h := newAdminHandler(leads, &mockBookingService{}, emailSvc, &mockRenderer{}, true)

	req := postForm("/admin/leads/"+id.String()+"/email", url.Values{})
	req.SetPathValue("id", id.String())

	rec := httptest.NewRecorder()
	h.SendQuoteEmail(rec, req)

	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "email_failed=1") {
		t.Errorf("expected email_failed redirect, got %s", loc)
	}
	if !strings.Contains(loc, "mailto_for="+id.String()) {
		t.Errorf("expected mailto_for on failure so the row offers the fallback, got %s", loc)
	}
}

func TestDashboard_MailtoFallbackAfterSendFailure(t *testing.T) {
	id := uuid.New()
	leads := &mockLeadService{
		listFn: func(ctx context.Context) ([]domain.Lead, error) {
			return []domain.Lead{
				{ID: id, ClientEmail: "tenant@example.com"},
				{ID: uuid.New(), ClientEmail: "other@example.com"},
			}, nil
		},
	}
	bookings := &mockBookingService{
		listDetailsFn: func(ctx context.Context) ([]domain.BookingDetail, error) { return nil, nil },
	}

	renderer := &mockRenderer{}
	h := newAdminHandler(leads, bookings, nil, renderer, true)

	req := httptest.NewRequest("GET", "/admin?email_failed=1&mailto_for="+id.String(), nil)
	rec := httptest.NewRecorder()
	h.Dashboard(rec, req)

	data := renderer.data.(DashboardData)
	if !strings.HasPrefix(data.Leads[0].MailtoLink, "mailto:tenant@example.com") {
		t.Errorf("expected mailto link on the failed row, got %q", data.Leads[0].MailtoLink)
	}
	if data.Leads[1].MailtoLink != "" {
		t.Errorf("other rows should keep the send button, got %q", data.Leads[1].MailtoLink)
	}
}

func TestSendQuoteEmail_InFlightGuard(t *testing.T) {
	id := uuid.New()

	leads := &mockLeadService{
		getByIDFn: func(ctx context.Context, got uuid.UUID) (*domain.Lead, error) {
			return &domain.Lead{ID: id}, nil
		},
	}

	h := newAdminHandler(leads, &mockBookingService{}, nil, &mockRenderer{}, true)

	// Simulate an in-flight send for this lead
	if !h.markSending(id) {
		t.Fatal("first markSending should succeed")
	}

	req := postForm("/admin/leads/"+id.String()+"/email", url.Values{})
	req.SetPathValue("id", id.String())

	rec := httptest.NewRecorder()
	h.SendQuoteEmail(rec, req)

	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "err=") {
		t.Errorf("expected error redirect while a send is in flight, got %s", loc)
	}

	h.unmarkSending(id)
	if !h.markSending(id) {
		t.Error("expected the lead to be sendable again after unmark")
	}
}

func TestShowBooking_RendersDetail(t *testing.T) {
	bookingID := uuid.New()
	detail := &domain.BookingDetail{
		Booking: domain.ConfirmedBooking{ID: bookingID, ContactName: "J Smith"},
		Lead:    domain.Lead{Address: "12 High Street"},
	}

	bookings := &mockBookingService{
		getDetailFn: func(ctx context.Context, id uuid.UUID) (*domain.BookingDetail, error) {
			return detail, nil
		},
	}

	renderer := &mockRenderer{}
	h := newAdminHandler(&mockLeadService{}, bookings, nil, renderer, true)

	req := httptest.NewRequest("GET", "/admin/bookings/"+bookingID.String(), nil)
	req.SetPathValue("id", bookingID.String())

	rec := httptest.NewRecorder()
	h.ShowBooking(rec, req)

	if renderer.name != "admin/booking" {
		t.Fatalf("expected booking template, got %q", renderer.name)
	}
	data := renderer.data.(BookingPageData)
	if !strings.Contains(data.ClipboardText, "12 High Street") {
		t.Error("expected clipboard text to include the property address")
	}
}

func TestShowBooking_NotFound(t *testing.T) {
	bookings := &mockBookingService{
		getDetailFn: func(ctx context.Context, id uuid.UUID) (*domain.BookingDetail, error) {
			return nil, domain.NotFound("booking.get", "booking", id.String())
		},
	}

	h := newAdminHandler(&mockLeadService{}, bookings, nil, &mockRenderer{}, true)

	id := uuid.NewString()
	req := httptest.NewRequest("GET", "/admin/bookings/"+id, nil)
	req.SetPathValue("id", id)

	rec := httptest.NewRecorder()
	h.ShowBooking(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
