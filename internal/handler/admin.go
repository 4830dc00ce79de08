package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/DukeRupert/gascert/internal/csrf"
	"github.com/DukeRupert/gascert/internal/domain"
	"github.com/DukeRupert/gascert/internal/email"
	"github.com/DukeRupert/gascert/internal/service"
)

// LeadRow is one lead as shown on the dashboard.
type LeadRow struct {
	Lead        domain.Lead
	Highlighted bool   // briefly marked after a bulk action touched this lead
	BookingURL  string // completion link the admin can copy for the client
	MailtoLink  string // fallback when no SMTP server is configured
}

// DashboardData contains the data for the admin dashboard template.
type DashboardData struct {
	CurrentPath string
	CSRFToken   string
	Leads       []LeadRow
	Bookings    []domain.BookingDetail
	Flash       *Flash
	QuoteValue  string // re-populated quote input on validation failure
}

// BookingPageData contains the data for the booking detail template.
type BookingPageData struct {
	CurrentPath   string
	CSRFToken     string
	Detail        *domain.BookingDetail
	ClipboardText string
	Flash         *Flash
}

// AdminHandler handles the admin dashboard and its bulk actions.
//
// Routes handled:
// - GET  /admin                    -> Dashboard
// - POST /admin/quote              -> ApplyQuote
// - POST /admin/delete             -> DeleteLeads
// - POST /admin/leads/{id}/email   -> SendQuoteEmail
// - GET  /admin/bookings/{id}      -> ShowBooking
type AdminHandler struct {
	leadService    service.LeadService
	bookingService service.BookingService
	emailService   email.QuoteEmailService
	renderer       TemplateRenderer
	logger         *slog.Logger
	baseURL        string
	isSecure       bool

	// emailConfigured switches the dashboard between the send button and
	// the mailto fallback link.
	emailConfigured bool

	// sending tracks per-lead quote emails in flight so a double-click
	// cannot send the same quote twice.
	mu      sync.Mutex
	sending map[uuid.UUID]bool
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	leadService service.LeadService,
	bookingService service.BookingService,
	emailService email.QuoteEmailService,
	renderer TemplateRenderer,
	logger *slog.Logger,
	baseURL string,
	emailConfigured bool,
	isSecure bool,
) *AdminHandler {
	return &AdminHandler{
		leadService:     leadService,
		bookingService:  bookingService,
		emailService:    emailService,
		renderer:        renderer,
		logger:          logger,
		baseURL:         baseURL,
		emailConfigured: emailConfigured,
		isSecure:        isSecure,
		sending:         make(map[uuid.UUID]bool),
	}
}

// Dashboard renders the admin dashboard: active leads with selection
// checkboxes, and confirmed bookings joined with their lead.
//
// Template: admin/dashboard
//
// Query Parameters (all set by the action handlers on redirect):
// - highlight: comma-separated lead ids to mark briefly
// - quoted, deleted: row counts for the success flash
// - emailed=1 / email_failed=1: outcome of a quote email send
// - mailto_for: lead id whose row gets the mailto fallback link
// - err: pass-through error message for the flash
//
// If one of the two lists fails to load, the surviving list still
// renders and the failure is reported in the flash.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	highlighted := parseIDList(r.URL.Query().Get("highlight"))
	mailtoFor, _ := uuid.Parse(r.URL.Query().Get("mailto_for"))
	flash := dashboardFlash(r)

	var loadErrors []string

	leads, err := h.leadService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list leads", "error", err)
		loadErrors = append(loadErrors, "leads")
	}

	bookings, err := h.bookingService.ListDetails(r.Context())
	if err != nil {
		h.logger.Error("failed to list bookings", "error", err)
		loadErrors = append(loadErrors, "bookings")
	}

	if len(loadErrors) > 0 {
		flash = &Flash{
			Type:    "error",
			Message: fmt.Sprintf("Failed to load %s. Showing what could be loaded.", strings.Join(loadErrors, " and ")),
		}
	}

	rows := make([]LeadRow, 0, len(leads))
	for _, lead := range leads {
		row := LeadRow{
			Lead:        lead,
			Highlighted: highlighted[lead.ID],
			BookingURL:  h.baseURL + lead.CompletionPath(),
		}
		if !h.emailConfigured || lead.ID == mailtoFor {
			row.MailtoLink = email.GenerateMailtoLink(&lead, h.baseURL)
		}
		rows = append(rows, row)
	}

	data := DashboardData{
		CurrentPath: r.URL.Path,
		CSRFToken:   csrf.EnsureToken(w, r, h.isSecure),
		Leads:       rows,
		Bookings:    bookings,
		Flash:       flash,
		QuoteValue:  r.URL.Query().Get("price"),
	}

	h.renderer.RenderHTTP(w, "admin/dashboard", data)
}

// ApplyQuote sets the quoted price on every selected lead.
//
// Form Fields:
// - lead_ids: selected lead checkboxes
// - price: quote amount in pounds, e.g. "75" or "75.00"
func (h *AdminHandler) ApplyQuote(w http.ResponseWriter, r *http.Request) {
	selection, ok := h.parseBulkForm(w, r)
	if !ok {
		return
	}

	price, err := domain.ParsePrice(r.FormValue("price"))
	if err != nil {
		h.redirectWithQuoteError(w, r, "Please enter a valid price")
		return
	}

	if selection.IsEmpty() {
		h.redirectWithQuoteError(w, r, "Select at least one lead to quote")
		return
	}

	updated, err := h.leadService.ApplyQuote(r.Context(), selection, price)
	if err != nil {
		h.logger.Error("apply quote failed", "error", err)
		h.redirectWithQuoteError(w, r, "Failed to apply quote. Please try again.")
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/admin?quoted=%d&highlight=%s", updated, joinIDs(selection.IDs())), http.StatusSeeOther)
}

// DeleteLeads soft-deletes every selected lead.
//
// Form Fields:
// - lead_ids: selected lead checkboxes
func (h *AdminHandler) DeleteLeads(w http.ResponseWriter, r *http.Request) {
	selection, ok := h.parseBulkForm(w, r)
	if !ok {
		return
	}

	if selection.IsEmpty() {
		h.redirectWithError(w, r, "Select at least one lead to delete")
		return
	}

	deleted, err := h.leadService.SoftDelete(r.Context(), selection)
	if err != nil {
		h.logger.Error("delete leads failed", "error", err)
		h.redirectWithError(w, r, "Failed to delete leads. Please try again.")
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/admin?deleted=%d", deleted), http.StatusSeeOther)
}

// SendQuoteEmail sends the quote email for one lead.
//
// Path: POST /admin/leads/{id}/email
//
// At most one send per lead runs at a time; a second submission while
// the first is in flight reports "already sending" rather than queueing
// a duplicate.
func (h *AdminHandler) SendQuoteEmail(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || !csrf.ValidateRequest(r) {
		h.redirectWithError(w, r, "Invalid security token. Please try again.")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		NotFoundResponse(w, r, h.logger)
		return
	}

	if !h.markSending(id) {
		h.redirectWithError(w, r, "A quote email for this lead is already being sent")
		return
	}
	defer h.unmarkSending(id)

	lead, err := h.leadService.GetByID(r.Context(), id)
	if err != nil {
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			NotFoundResponse(w, r, h.logger)
			return
		}
		h.logger.Error("failed to load lead for email", "error", err, "lead_id", id)
		h.redirectWithError(w, r, "Failed to load lead. Please try again.")
		return
	}

	// The dashboard disables the button for unquoted leads, but a direct
	// POST must not reach the client with "Not quoted yet".
	if !lead.HasQuote() {
		h.redirectWithError(w, r, "Apply a quote before emailing this lead")
		return
	}

	if err := h.emailService.SendQuoteEmail(r.Context(), lead); err != nil {
		if domain.ErrorCode(err) == domain.ECONFIG {
			h.redirectWithError(w, r, "Email sending is not configured. Use the email link instead.")
			return
		}
		h.logger.Error("quote email failed", "error", err, "lead_id", id)
		// The failed row gets a mailto link so the admin can still get
		// the quote out by hand.
		http.Redirect(w, r, fmt.Sprintf("/admin?email_failed=1&mailto_for=%s&highlight=%s", id, id), http.StatusSeeOther)
		return
	}

	h.logger.Info("quote email sent", "lead_id", id)
	http.Redirect(w, r, fmt.Sprintf("/admin?emailed=1&highlight=%s", id), http.StatusSeeOther)
}

// ShowBooking renders the booking detail view with the copy-ready
// plain-text summary.
//
// Path: GET /admin/bookings/{id}
//
// Template: admin/booking
func (h *AdminHandler) ShowBooking(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		NotFoundResponse(w, r, h.logger)
		return
	}

	detail, err := h.bookingService.GetDetail(r.Context(), id)
	if err != nil {
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			NotFoundResponse(w, r, h.logger)
			return
		}
		h.logger.Error("failed to load booking", "error", err, "booking_id", id)
		InternalErrorResponse(w, r, h.logger, err)
		return
	}

	data := BookingPageData{
		CurrentPath:   r.URL.Path,
		CSRFToken:     csrf.EnsureToken(w, r, h.isSecure),
		Detail:        detail,
		ClipboardText: detail.ClipboardText(),
	}

	h.renderer.RenderHTTP(w, "admin/booking", data)
}

// parseBulkForm parses a bulk-action form and builds the selection from
// the posted checkboxes. Returns ok=false after writing a response.
func (h *AdminHandler) parseBulkForm(w http.ResponseWriter, r *http.Request) (*domain.Selection, bool) {
	if err := r.ParseForm(); err != nil {
		h.redirectWithError(w, r, "Invalid form submission. Please try again.")
		return nil, false
	}

	if !csrf.ValidateRequest(r) {
		h.redirectWithError(w, r, "Invalid security token. Please try again.")
		return nil, false
	}

	selection := domain.NewSelection()
	for _, raw := range r.Form["lead_ids"] {
		id, err := uuid.Parse(raw)
		if err != nil {
			// Skip malformed ids rather than failing the whole action
			continue
		}
		selection.ToggleOne(id)
	}

	return selection, true
}

// redirectWithError sends the admin back to the dashboard with an error flash.
func (h *AdminHandler) redirectWithError(w http.ResponseWriter, r *http.Request, message string) {
	http.Redirect(w, r, "/admin?err="+url.QueryEscape(message), http.StatusSeeOther)
}

// redirectWithQuoteError is redirectWithError for quote failures: it also
// carries the submitted price so the input survives the round trip.
func (h *AdminHandler) redirectWithQuoteError(w http.ResponseWriter, r *http.Request, message string) {
	target := "/admin?err=" + url.QueryEscape(message)
	if price := r.FormValue("price"); price != "" {
		target += "&price=" + url.QueryEscape(price)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// markSending records an in-flight quote email for a lead. Returns false
// if one is already in flight.
func (h *AdminHandler) markSending(id uuid.UUID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sending[id] {
		return false
	}
	h.sending[id] = true
	return true
}

func (h *AdminHandler) unmarkSending(id uuid.UUID) {
	h.mu.Lock()
	delete(h.sending, id)
	h.mu.Unlock()
}

// dashboardFlash builds the flash message from redirect query parameters.
func dashboardFlash(r *http.Request) *Flash {
	q := r.URL.Query()

	if msg := q.Get("err"); msg != "" {
		return &Flash{Type: "error", Message: msg}
	}
	if n, err := strconv.Atoi(q.Get("quoted")); err == nil && n > 0 {
		return &Flash{Type: "success", Message: fmt.Sprintf("Quote applied to %d %s", n, pluralLead(n))}
	}
	if n, err := strconv.Atoi(q.Get("deleted")); err == nil && n > 0 {
		return &Flash{Type: "success", Message: fmt.Sprintf("Deleted %d %s", n, pluralLead(n))}
	}
	if q.Get("emailed") == "1" {
		return &Flash{Type: "success", Message: "Quote email sent"}
	}
	if q.Get("email_failed") == "1" {
		return &Flash{Type: "error", Message: "Quote email failed to send. Use the email link on the lead to send it from your own mail client."}
	}

	return nil
}

func pluralLead(n int) string {
	if n == 1 {
		return "lead"
	}
	return "leads"
}

// parseIDList parses a comma-separated uuid list into a lookup set.
// Malformed entries are ignored.
func parseIDList(raw string) map[uuid.UUID]bool {
	ids := make(map[uuid.UUID]bool)
	if raw == "" {
		return ids
	}
	for _, part := range strings.Split(raw, ",") {
		if id, err := uuid.Parse(strings.TrimSpace(part)); err == nil {
			ids[id] = true
		}
	}
	return ids
}

// joinIDs renders uuids as a comma-separated query value.
func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}
