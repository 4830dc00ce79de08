package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/DukeRupert/gascert/internal/csrf"
	"github.com/DukeRupert/gascert/internal/domain"
	"github.com/DukeRupert/gascert/internal/service"
)

// CompletionPageData contains the data for the booking-completion templates.
type CompletionPageData struct {
	CurrentPath string
	CSRFToken   string
	Lead        *domain.Lead
	Form        map[string]string
	Errors      map[string]string
	Flash       *Flash
}

// CompletionHandler handles the client-facing booking-completion flow,
// reached from the link in the quote email.
//
// Routes handled:
// - GET  /complete-booking/{token} -> Show
// - POST /complete-booking/{token} -> Complete
type CompletionHandler struct {
	bookingService service.BookingService
	renderer       TemplateRenderer
	logger         *slog.Logger
	isSecure       bool
}

// NewCompletionHandler creates a new CompletionHandler.
func NewCompletionHandler(
	bookingService service.BookingService,
	renderer TemplateRenderer,
	logger *slog.Logger,
	isSecure bool,
) *CompletionHandler {
	return &CompletionHandler{
		bookingService: bookingService,
		renderer:       renderer,
		logger:         logger,
		isSecure:       isSecure,
	}
}

// Show resolves the completion token and renders the matching view:
// the contact-details form, the already-confirmed page, or not-found.
//
// Templates: public/completion, public/completion_confirmed,
// public/completion_not_found
func (h *CompletionHandler) Show(w http.ResponseWriter, r *http.Request) {
	completion, err := h.bookingService.Resolve(r.Context(), r.PathValue("token"))
	if err != nil {
		h.logger.Error("failed to resolve completion token", "error", err)
		InternalErrorResponse(w, r, h.logger, err)
		return
	}

	switch completion.State {
	case domain.CompletionNotFound:
		h.renderNotFound(w, r)
	case domain.CompletionAlreadyConfirmed:
		h.renderer.RenderHTTP(w, "public/completion_confirmed", CompletionPageData{
			CurrentPath: r.URL.Path,
			Lead:        completion.Lead,
		})
	default:
		h.renderForm(w, r, http.StatusOK, completion.Lead, nil, nil, nil)
	}
}

// Complete processes the contact-details form.
//
// Form Fields:
// - contact_name (required)
// - contact_phone (optional)
// - contact_email (optional)
//
// A conflict (the booking was confirmed in the meantime, or the form
// was submitted twice) renders the confirmed page rather than an error:
// from the client's point of view the booking is confirmed either way.
func (h *CompletionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	leadID, err := uuid.Parse(r.PathValue("token"))
	if err != nil {
		h.renderNotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.logger.Error("failed to parse completion form", "error", err)
		h.rerenderForm(w, r, leadID, nil, nil, &Flash{
			Type:    "error",
			Message: "Invalid form submission. Please try again.",
		})
		return
	}

	if !csrf.ValidateRequest(r) {
		h.rerenderForm(w, r, leadID, nil, nil, &Flash{
			Type:    "error",
			Message: "Invalid security token. Please try again.",
		})
		return
	}

	contactName := strings.TrimSpace(r.FormValue("contact_name"))
	contactPhone := strings.TrimSpace(r.FormValue("contact_phone"))
	contactEmail := strings.TrimSpace(r.FormValue("contact_email"))

	formValues := map[string]string{
		"ContactName":  contactName,
		"ContactPhone": contactPhone,
		"ContactEmail": contactEmail,
	}

	booking, err := h.bookingService.Complete(r.Context(), domain.CreateBookingParams{
		LeadID:       leadID,
		ContactName:  contactName,
		ContactPhone: contactPhone,
		ContactEmail: contactEmail,
	})
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			h.rerenderForm(w, r, leadID, formValues, ve.Fields, nil)
		case domain.ErrorCode(err) == domain.ENOTFOUND:
			h.renderNotFound(w, r)
		case domain.ErrorCode(err) == domain.ECONFLICT:
			h.renderConfirmed(w, r, leadID)
		default:
			h.logger.Error("booking completion failed", "error", err, "lead_id", leadID)
			h.rerenderForm(w, r, leadID, formValues, nil, &Flash{
				Type:    "error",
				Message: "Something went wrong confirming your booking. Please try again.",
			})
		}
		return
	}

	h.logger.Info("booking confirmed", "booking_id", booking.ID, "lead_id", leadID)
	h.renderConfirmed(w, r, leadID)
}

// renderConfirmed shows the confirmed page, loading the lead for display
// when it can still be resolved.
func (h *CompletionHandler) renderConfirmed(w http.ResponseWriter, r *http.Request, leadID uuid.UUID) {
	data := CompletionPageData{CurrentPath: r.URL.Path}

	if completion, err := h.bookingService.Resolve(r.Context(), leadID.String()); err == nil {
		data.Lead = completion.Lead
	}

	h.renderer.RenderHTTP(w, "public/completion_confirmed", data)
}

// rerenderForm reloads the lead and re-renders the completion form with
// errors. If the lead can no longer be resolved, falls back to not-found.
func (h *CompletionHandler) rerenderForm(
	w http.ResponseWriter,
	r *http.Request,
	leadID uuid.UUID,
	formValues map[string]string,
	fieldErrors map[string]string,
	flash *Flash,
) {
	completion, err := h.bookingService.Resolve(r.Context(), leadID.String())
	if err != nil || completion.State == domain.CompletionNotFound {
		h.renderNotFound(w, r)
		return
	}
	if completion.State == domain.CompletionAlreadyConfirmed {
		h.renderConfirmed(w, r, leadID)
		return
	}

	h.renderForm(w, r, http.StatusUnprocessableEntity, completion.Lead, formValues, fieldErrors, flash)
}

func (h *CompletionHandler) renderForm(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	lead *domain.Lead,
	formValues map[string]string,
	fieldErrors map[string]string,
	flash *Flash,
) {
	if formValues == nil {
		formValues = make(map[string]string)
	}
	if fieldErrors == nil {
		fieldErrors = make(map[string]string)
	}

	data := CompletionPageData{
		CurrentPath: r.URL.Path,
		CSRFToken:   csrf.EnsureToken(w, r, h.isSecure),
		Lead:        lead,
		Form:        formValues,
		Errors:      fieldErrors,
		Flash:       flash,
	}

	h.renderer.RenderHTTPStatus(w, status, "public/completion", data)
}

func (h *CompletionHandler) renderNotFound(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderHTTPStatus(w, http.StatusNotFound, "public/completion_not_found", CompletionPageData{
		CurrentPath: r.URL.Path,
	})
}
