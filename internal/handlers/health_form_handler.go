package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"carewise/internal/content"
	"carewise/internal/models"
	"carewise/internal/service"
	"carewise/internal/validation"
	"carewise/internal/vault"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HealthFormViewData backs the health assessment page.
type HealthFormViewData struct {
	Input        models.HealthForm
	Severities   []string
	Result       *models.HealthForm
	Record       *healthReport
	EmailEnabled bool
}

func validationMessage(err error) string {
	var verr validation.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return ErrInvalidFormData
}

func (s *Server) emailEnabled() bool {
	return s.email != nil && s.email.IsEnabled()
}

func (s *Server) healthFormData(v *Visitor) HealthFormViewData {
	data := HealthFormViewData{
		Input:        models.HealthForm{Severity: "mild"},
		Severities:   validation.Severities,
		EmailEnabled: s.emailEnabled(),
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.lastForm != nil {
		form := *v.lastForm
		data.Result = &form
	}
	if v.lastReport != nil {
		report := *v.lastReport
		data.Record = &report
	}
	return data
}

// ShowHealthForm displays the symptom form and the latest result.
func (s *Server) ShowHealthForm(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())
	s.renderPage(w, r, "health_form", "Health Assessment", "health-form", s.healthFormData(v))
}

// SubmitHealthForm generates guidance for the submitted symptoms, stores the
// form and fingerprints it on the ledger.
func (s *Server) SubmitHealthForm(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	input := models.HealthForm{
		Symptoms:        strings.TrimSpace(r.FormValue("symptoms")),
		Severity:        strings.TrimSpace(r.FormValue("severity")),
		Duration:        strings.TrimSpace(r.FormValue("duration")),
		AdditionalNotes: strings.TrimSpace(r.FormValue("notes")),
	}
	if err := validation.ValidateHealthForm(input.Symptoms, input.Severity, input.Duration, input.AdditionalNotes); err != nil {
		data := s.healthFormData(v)
		data.Input = input
		s.render(w, r, http.StatusBadRequest, "health_form", "Health Assessment", "health-form", data, validationMessage(err))
		return
	}

	description := content.SymptomDescription(input.Symptoms, input.Severity, input.Duration, input.AdditionalNotes)
	form := input
	form.ID = uuid.NewString()
	form.UserID = v.ID
	form.AIResponse = s.library.Responder.Respond(description, content.ContextSymptoms)
	form.CreatedAt = time.Now()

	rec, reportData, err := s.ledger.StoreSymptomReport(v.ID, form.Symptoms, form.Severity)
	if err != nil {
		respondWithError(w, s.logger, http.StatusInternalServerError, ErrInternalServerError, "Error storing symptom report", err)
		return
	}
	raw, err := json.Marshal(reportData)
	if err != nil {
		respondWithError(w, s.logger, http.StatusInternalServerError, ErrInternalServerError, "Error encoding symptom report", err)
		return
	}
	v.Vault.Award("CARE-1", vault.RecordReward)

	v.mu.Lock()
	v.lastForm = &form
	v.lastReport = &healthReport{Record: rec, Data: string(raw)}
	v.mu.Unlock()

	v.Speech.Reset()
	s.records.SaveHealthForm(form)
	v.Announcer.Announce("Your health guidance is ready")

	redirect(w, r, "/health-form")
}

func (v *Visitor) latestForm() (models.HealthForm, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.lastForm == nil {
		return models.HealthForm{}, false
	}
	return *v.lastForm, true
}

// DownloadReport serves the latest assessment as a PDF.
func (s *Server) DownloadReport(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	form, ok := v.latestForm()
	if !ok {
		respondWithError(w, s.logger, http.StatusNotFound, "No health assessment to download yet", "", nil)
		return
	}

	pdf, err := s.reports.HealthReport(form)
	if err != nil {
		respondWithError(w, s.logger, http.StatusInternalServerError, ErrInternalServerError, "Error generating health report", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+service.ReportFilename+`"`)
	if _, err := w.Write(pdf); err != nil {
		s.logger.Warn("failed to write health report", zap.Error(err))
	}
}

// EmailReport sends the latest assessment PDF through SES.
func (s *Server) EmailReport(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	if !s.emailEnabled() {
		respondWithError(w, s.logger, http.StatusServiceUnavailable, "Email delivery is not available", "", nil)
		return
	}

	form, ok := v.latestForm()
	if !ok {
		respondWithError(w, s.logger, http.StatusNotFound, "No health assessment to send yet", "", nil)
		return
	}

	to := strings.TrimSpace(r.FormValue("email"))
	if err := validation.ValidateEmail(to); err != nil {
		data := s.healthFormData(v)
		s.render(w, r, http.StatusBadRequest, "health_form", "Health Assessment", "health-form", data, validationMessage(err))
		return
	}

	pdf, err := s.reports.HealthReport(form)
	if err != nil {
		respondWithError(w, s.logger, http.StatusInternalServerError, ErrInternalServerError, "Error generating health report", err)
		return
	}
	if err := s.email.SendHealthReport(r.Context(), to, form, pdf); err != nil {
		s.logger.Error("failed to email health report", zap.String("visitor_id", v.ID), zap.Error(err))
		v.Announcer.Announce("We couldn't send the email. Please download the report instead.")
		redirect(w, r, "/health-form")
		return
	}

	v.Announcer.Announce("Report sent to " + to)
	redirect(w, r, "/health-form")
}
