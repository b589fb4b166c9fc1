package handlers

import (
	"net/http"
	"strings"

	"carewise/internal/content"
	"carewise/internal/models"
	"carewise/internal/validation"
)

// MentalHealthViewData backs the mental health page.
type MentalHealthViewData struct {
	Moods    []models.MoodOption
	FirstAid []models.FirstAidGuide
	Selected string
	Checkin  *moodCheckin
}

func (s *Server) mentalHealthData(v *Visitor) MentalHealthViewData {
	data := MentalHealthViewData{
		Moods:    s.library.Moods,
		FirstAid: s.library.FirstAid,
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.lastMood != nil {
		c := *v.lastMood
		data.Checkin = &c
		data.Selected = c.Mood.ID
	}
	return data
}

// ShowMentalHealth displays the mood check-in.
func (s *Server) ShowMentalHealth(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())
	s.renderPage(w, r, "mental_health", "Mental Health", "mental-health", s.mentalHealthData(v))
}

// SubmitMood answers a mood check-in and records it.
func (s *Server) SubmitMood(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	mood, ok := s.library.Mood(r.FormValue("mood"))
	if !ok {
		s.render(w, r, http.StatusBadRequest, "mental_health", "Mental Health", "mental-health", s.mentalHealthData(v), "Please choose how you are feeling.")
		return
	}
	notes := strings.TrimSpace(r.FormValue("notes"))
	if err := validation.ValidateOptional("notes", notes, validation.MaxNotesLength); err != nil {
		s.render(w, r, http.StatusBadRequest, "mental_health", "Mental Health", "mental-health", s.mentalHealthData(v), validationMessage(err))
		return
	}

	response := s.library.Responder.Respond(content.MoodDescription(mood.ID, notes), content.ContextMood)

	v.mu.Lock()
	v.lastMood = &moodCheckin{Mood: mood, Response: response}
	v.mu.Unlock()

	v.Speech.Reset()
	s.records.SaveMoodCheckin(v.ID, mood.ID, notes, response)
	v.Announcer.Announce("Thank you for checking in")

	redirect(w, r, "/mental-health")
}
