package handlers

import (
	"encoding/json"
	"net/http"

	"carewise/internal/accessibility"
	"carewise/internal/models"
)

// SettingsViewData backs the accessibility settings page.
type SettingsViewData struct {
	Modes         []models.AccessibilityMode
	FontSizes     []models.FontSize
	ContrastModes []models.ContrastMode
}

// AccessibilityResponse is the JSON view of the settings.
type AccessibilityResponse struct {
	Settings   models.AccessibilitySettings `json:"settings"`
	Saved      bool                         `json:"saved"`
	FontFamily string                       `json:"fontFamily"`
	FontSize   string                       `json:"fontSize"`
	Classes    []string                     `json:"classes"`
}

var settingsOptions = SettingsViewData{
	Modes:         models.AccessibilityModes,
	FontSizes:     models.FontSizes,
	ContrastModes: models.ContrastModes,
}

func accessibilityResponse(settings models.AccessibilitySettings, saved bool) AccessibilityResponse {
	p := accessibility.Present(settings)
	return AccessibilityResponse{
		Settings:   settings,
		Saved:      saved,
		FontFamily: p.FontFamily,
		FontSize:   p.FontSize,
		Classes:    p.Classes,
	}
}

// ShowSettings displays the accessibility settings form.
func (s *Server) ShowSettings(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, "settings", "Accessibility Settings", "settings", settingsOptions)
}

// updateSettings applies patch over the current settings, persists the
// result and mirrors it to the record store.
func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request, v *Visitor, patch accessibility.Patch) (models.AccessibilitySettings, error) {
	current, _ := s.settings.Load(r)
	updated, err := patch.Apply(current)
	if err != nil {
		return current, err
	}
	if err := s.settings.Save(w, r, updated); err != nil {
		return current, err
	}
	s.records.SavePreferences(v.ID, updated)
	v.Announcer.Announce("Accessibility settings updated")
	return updated, nil
}

// SaveSettings handles the settings form.
func (s *Server) SaveSettings(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		respondWithError(w, s.logger, http.StatusBadRequest, ErrInvalidFormData, "Error parsing settings form", err)
		return
	}
	patch, err := accessibility.PatchFromForm(r.PostForm)
	if err != nil {
		s.render(w, r, http.StatusBadRequest, "settings", "Accessibility Settings", "settings", settingsOptions, err.Error())
		return
	}
	if _, err := s.updateSettings(w, r, v, patch); err != nil {
		s.render(w, r, http.StatusBadRequest, "settings", "Accessibility Settings", "settings", settingsOptions, err.Error())
		return
	}
	redirect(w, r, "/settings")
}

// ResetSettings restores the defaults.
func (s *Server) ResetSettings(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	defaults := models.DefaultAccessibilitySettings()
	if err := s.settings.Save(w, r, defaults); err != nil {
		respondWithError(w, s.logger, http.StatusInternalServerError, ErrInternalServerError, "Error saving settings", err)
		return
	}
	s.records.SavePreferences(v.ID, defaults)
	v.Announcer.Announce("Accessibility settings restored to defaults")
	redirect(w, r, "/settings")
}

// GetAccessibility returns the current settings and their presentation.
func (s *Server) GetAccessibility(w http.ResponseWriter, r *http.Request) {
	settings, saved := s.settings.Load(r)
	respondWithJSON(w, s.logger, http.StatusOK, accessibilityResponse(settings, saved))
}

// PatchAccessibility applies a partial JSON update.
func (s *Server) PatchAccessibility(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	var patch accessibility.Patch
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&patch); err != nil {
		respondWithJSONError(w, s.logger, http.StatusBadRequest, ErrInvalidFormData, nil)
		return
	}
	updated, err := s.updateSettings(w, r, v, patch)
	if err != nil {
		respondWithJSONError(w, s.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}
	respondWithJSON(w, s.logger, http.StatusOK, accessibilityResponse(updated, true))
}

// Announcements drains the visitor's pending aria-live messages.
func (s *Server) Announcements(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())
	messages := v.Announcer.Drain()
	if messages == nil {
		messages = []string{}
	}
	respondWithJSON(w, s.logger, http.StatusOK, map[string][]string{"messages": messages})
}
