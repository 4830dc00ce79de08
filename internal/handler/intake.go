package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/DukeRupert/gascert/internal/csrf"
	"github.com/DukeRupert/gascert/internal/domain"
	"github.com/DukeRupert/gascert/internal/service"
)

// IntakePageData contains the data for the intake form template.
type IntakePageData struct {
	CurrentPath string
	CSRFToken   string
	Form        map[string]string
	Errors      map[string]string
	Flash       *Flash
}

// IntakeHandler handles the public lead-capture form.
//
// Routes handled:
// - GET  /          -> ShowForm
// - POST /leads     -> CreateLead
// - GET  /thank-you -> ShowThankYou
type IntakeHandler struct {
	leadService service.LeadService
	renderer    TemplateRenderer
	logger      *slog.Logger
	isSecure    bool
}

// NewIntakeHandler creates a new IntakeHandler.
func NewIntakeHandler(
	leadService service.LeadService,
	renderer TemplateRenderer,
	logger *slog.Logger,
	isSecure bool,
) *IntakeHandler {
	return &IntakeHandler{
		leadService: leadService,
		renderer:    renderer,
		logger:      logger,
		isSecure:    isSecure,
	}
}

// ShowForm renders the intake form.
//
// Template: public/intake
func (h *IntakeHandler) ShowForm(w http.ResponseWriter, r *http.Request) {
	data := IntakePageData{
		CurrentPath: r.URL.Path,
		CSRFToken:   csrf.EnsureToken(w, r, h.isSecure),
		Form:        make(map[string]string),
		Errors:      make(map[string]string),
	}

	h.renderer.RenderHTTP(w, "public/intake", data)
}

// CreateLead processes the intake form submission.
//
// Form Fields:
// - address (required): property address
// - expiry_date (required): current certificate expiry, YYYY-MM-DD
// - client_email (required): where the quote goes
// - has_occupant (checkbox): property is occupied
// - occupant_name: required when has_occupant is checked
//
// On success the visitor is redirected to the thank-you page. On
// validation failure the form is re-rendered with per-field errors and
// the submitted values preserved.
func (h *IntakeHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.Error("failed to parse intake form", "error", err)
		h.renderFormError(w, r, nil, nil, &Flash{
			Type:    "error",
			Message: "Invalid form submission. Please try again.",
		})
		return
	}

	if !csrf.ValidateRequest(r) {
		h.renderFormError(w, r, nil, nil, &Flash{
			Type:    "error",
			Message: "Invalid security token. Please try again.",
		})
		return
	}

	address := strings.TrimSpace(r.FormValue("address"))
	expiryRaw := strings.TrimSpace(r.FormValue("expiry_date"))
	clientEmail := strings.TrimSpace(r.FormValue("client_email"))
	hasOccupant := r.FormValue("has_occupant") == "on"
	occupantName := strings.TrimSpace(r.FormValue("occupant_name"))

	formValues := map[string]string{
		"Address":      address,
		"ExpiryDate":   expiryRaw,
		"ClientEmail":  clientEmail,
		"OccupantName": occupantName,
	}
	if hasOccupant {
		formValues["HasOccupant"] = "on"
	}

	var expiryDate time.Time
	if expiryRaw != "" {
		parsed, err := time.Parse("2006-01-02", expiryRaw)
		if err != nil {
			h.renderFormError(w, r, formValues, map[string]string{
				"expiry_date": "Please enter a valid date",
			}, nil)
			return
		}
		expiryDate = parsed
	}

	lead, err := h.leadService.Create(r.Context(), domain.CreateLeadParams{
		Address:      address,
		ClientEmail:  clientEmail,
		ExpiryDate:   expiryDate,
		HasOccupant:  hasOccupant,
		OccupantName: occupantName,
	})
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			h.renderFormError(w, r, formValues, ve.Fields, nil)
			return
		}

		h.logger.Error("lead creation failed", "error", err)
		h.renderFormError(w, r, formValues, nil, &Flash{
			Type:    "error",
			Message: "Something went wrong saving your enquiry. Please try again.",
		})
		return
	}

	h.logger.Info("intake submitted", "lead_id", lead.ID)
	http.Redirect(w, r, "/thank-you", http.StatusSeeOther)
}

// ShowThankYou renders the post-submission confirmation page.
//
// Template: public/thank_you
func (h *IntakeHandler) ShowThankYou(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderHTTP(w, "public/thank_you", IntakePageData{
		CurrentPath: r.URL.Path,
	})
}

// renderFormError re-renders the intake form with errors.
func (h *IntakeHandler) renderFormError(
	w http.ResponseWriter,
	r *http.Request,
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

	data := IntakePageData{
		CurrentPath: r.URL.Path,
		CSRFToken:   csrf.EnsureToken(w, r, h.isSecure),
		Form:        formValues,
		Errors:      fieldErrors,
		Flash:       flash,
	}

	h.renderer.RenderHTTPStatus(w, http.StatusUnprocessableEntity, "public/intake", data)
}
