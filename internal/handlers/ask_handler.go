package handlers

import (
	"net/http"
	"strings"
	"time"

	"carewise/internal/content"
	"carewise/internal/models"
	"carewise/internal/speech"
	"carewise/internal/validation"
)

// AskViewData backs the Ask AI page.
type AskViewData struct {
	Exchanges []Exchange
	Avatar    speech.AvatarResult
}

// MedicineViewData backs the medicine page.
type MedicineViewData struct {
	Exchanges       []Exchange
	CommonQuestions []models.CommonQuestion
}

// ShowAskAI displays the conversation so far.
func (s *Server) ShowAskAI(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	v.mu.Lock()
	data := AskViewData{
		Exchanges: append([]Exchange(nil), v.conversation...),
		Avatar:    v.avatar,
	}
	v.mu.Unlock()

	if data.Avatar.URL == "" {
		data.Avatar = speech.AvatarResult{URL: speech.PlaceholderAvatar, Voice: speech.AvatarVoice}
	}
	s.renderPage(w, r, "ask_ai", "Ask AI", "ask-ai", data)
}

// AskAI answers a general health question, logs the exchange and asks the
// avatar service for a video of the answer.
func (s *Server) AskAI(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	question := strings.TrimSpace(r.FormValue("question"))
	if err := validation.ValidateRequired("question", question, validation.MaxQuestionLength); err != nil {
		s.render(w, r, http.StatusBadRequest, "ask_ai", "Ask AI", "ask-ai", AskViewData{
			Avatar: speech.AvatarResult{URL: speech.PlaceholderAvatar, Voice: speech.AvatarVoice},
		}, err.Error())
		return
	}

	answer := s.library.Responder.Respond(question, content.ContextGeneral)
	video := s.avatar.Video(r.Context(), answer)

	v.mu.Lock()
	v.conversation = appendExchange(v.conversation, Exchange{Question: question, Answer: answer, At: time.Now()})
	v.avatar = video
	v.mu.Unlock()

	v.Speech.Reset()
	s.records.SaveConversation(v.ID, question, answer)
	v.Announcer.Announce("Answer ready")

	redirect(w, r, "/ask-ai")
}

// ShowMedicine displays the medicine page.
func (s *Server) ShowMedicine(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	v.mu.Lock()
	data := MedicineViewData{
		Exchanges:       append([]Exchange(nil), v.medicine...),
		CommonQuestions: s.library.CommonQuestions,
	}
	v.mu.Unlock()

	s.renderPage(w, r, "medicine", "Medicine Information", "medicine", data)
}

// AskMedicine answers a medicine question. Medicine queries stay in the
// visitor's session and are not written to the record store.
func (s *Server) AskMedicine(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	question := strings.TrimSpace(r.FormValue("question"))
	if err := validation.ValidateRequired("question", question, validation.MaxQuestionLength); err != nil {
		s.render(w, r, http.StatusBadRequest, "medicine", "Medicine Information", "medicine", MedicineViewData{
			CommonQuestions: s.library.CommonQuestions,
		}, err.Error())
		return
	}

	answer := s.library.Responder.Respond(question, content.ContextMedicine)

	v.mu.Lock()
	v.medicine = appendExchange(v.medicine, Exchange{Question: question, Answer: answer, At: time.Now()})
	v.mu.Unlock()

	v.Speech.Reset()
	v.Announcer.Announce("Answer ready")
	redirect(w, r, "/medicine")
}
