package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/DukeRupert/gascert/internal/csrf"
	"github.com/DukeRupert/gascert/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockRenderer captures the last rendered template instead of executing it.
type mockRenderer struct {
	name   string
	status int
	data   interface{}
}

func (m *mockRenderer) RenderHTTP(w http.ResponseWriter, name string, data interface{}) {
	m.name = name
	m.status = http.StatusOK
	m.data = data
	w.WriteHeader(http.StatusOK)
}

func (m *mockRenderer) RenderHTTPStatus(w http.ResponseWriter, status int, name string, data interface{}) {
	m.name = name
	m.status = status
	m.data = data
	w.WriteHeader(status)
}

// mockLeadService implements service.LeadService with function fields.
type mockLeadService struct {
	createFn     func(ctx context.Context, params domain.CreateLeadParams) (*domain.Lead, error)
	getByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.Lead, error)
	listFn       func(ctx context.Context) ([]domain.Lead, error)
	applyQuoteFn func(ctx context.Context, selection *domain.Selection, price domain.Price) (int64, error)
	softDeleteFn func(ctx context.Context, selection *domain.Selection) (int64, error)
}

func (m *mockLeadService) Create(ctx context.Context, params domain.CreateLeadParams) (*domain.Lead, error) {
	return m.createFn(ctx, params)
}

func (m *mockLeadService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockLeadService) List(ctx context.Context) ([]domain.Lead, error) {
	return m.listFn(ctx)
}

func (m *mockLeadService) ApplyQuote(ctx context.Context, selection *domain.Selection, price domain.Price) (int64, error) {
	return m.applyQuoteFn(ctx, selection, price)
}

func (m *mockLeadService) SoftDelete(ctx context.Context, selection *domain.Selection) (int64, error) {
	return m.softDeleteFn(ctx, selection)
}

// mockBookingService implements service.BookingService with function fields.
type mockBookingService struct {
	resolveFn     func(ctx context.Context, token string) (*domain.Completion, error)
	completeFn    func(ctx context.Context, params domain.CreateBookingParams) (*domain.ConfirmedBooking, error)
	listDetailsFn func(ctx context.Context) ([]domain.BookingDetail, error)
	getDetailFn   func(ctx context.Context, id uuid.UUID) (*domain.BookingDetail, error)
}

func (m *mockBookingService) Resolve(ctx context.Context, token string) (*domain.Completion, error) {
	return m.resolveFn(ctx, token)
}

func (m *mockBookingService) Complete(ctx context.Context, params domain.CreateBookingParams) (*domain.ConfirmedBooking, error) {
	return m.completeFn(ctx, params)
}

func (m *mockBookingService) ListDetails(ctx context.Context) ([]domain.BookingDetail, error) {
	return m.listDetailsFn(ctx)
}

func (m *mockBookingService) GetDetail(ctx context.Context, id uuid.UUID) (*domain.BookingDetail, error) {
	return m.getDetailFn(ctx, id)
}

// mockQuoteEmailService implements email.QuoteEmailService with a function field.
type mockQuoteEmailService struct {
	sendFn func(ctx context.Context, lead *domain.Lead) error
}

func (m *mockQuoteEmailService) SendQuoteEmail(ctx context.Context, lead *domain.Lead) error {
	return m.sendFn(ctx, lead)
}

// postForm builds a form POST with a matching CSRF cookie and field.
func postForm(target string, form url.Values) *http.Request {
	const token = "test-csrf-token"
	form.Set(csrf.FormFieldName, token)

	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: csrf.CookieName, Value: token})
	return req
}
