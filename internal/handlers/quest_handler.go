package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"carewise/internal/models"
	"carewise/internal/quiz"
)

// CategoryView is a quest category with its state for this visitor.
type CategoryView struct {
	models.Category
	Locked   bool
	Selected bool
}

// QuestViewData backs the health quest page.
type QuestViewData struct {
	Progress       models.PlayerProgress
	Accuracy       int
	LevelThreshold int
	LevelXP        int
	Categories     []CategoryView
	Started        bool
	Question       *models.Question
	Answered       bool
	Outcome        quiz.Outcome
}

func questView(e *quiz.Engine) QuestViewData {
	progress := e.Progress()
	threshold := e.Rules().LevelThreshold
	data := QuestViewData{
		Progress:       progress,
		Accuracy:       e.Accuracy(),
		LevelThreshold: threshold,
		LevelXP:        progress.Experience % threshold,
		Started:        e.Started(),
		Answered:       e.Answered(),
	}
	for _, c := range e.Bank().Categories() {
		data.Categories = append(data.Categories, CategoryView{
			Category: c,
			Locked:   !progress.IsUnlocked(c.ID),
			Selected: c.ID == e.Category(),
		})
	}
	if q, ok := e.Current(); ok {
		data.Question = &q
	}
	if out, ok := e.LastOutcome(); ok {
		data.Outcome = out
	}
	return data
}

func questErrorStatus(err error) int {
	switch {
	case errors.Is(err, quiz.ErrUnknownCategory), errors.Is(err, quiz.ErrInvalidAnswer):
		return http.StatusBadRequest
	case errors.Is(err, quiz.ErrCategoryLocked):
		return http.StatusForbidden
	case errors.Is(err, quiz.ErrNotStarted), errors.Is(err, quiz.ErrNoActiveQuestion), errors.Is(err, quiz.ErrAlreadyAnswered):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func questErrorMessage(err error) string {
	switch {
	case errors.Is(err, quiz.ErrCategoryLocked):
		return "That topic unlocks at a higher level. Keep answering to reach it."
	case errors.Is(err, quiz.ErrUnknownCategory):
		return "Please choose a topic from the list."
	case errors.Is(err, quiz.ErrInvalidAnswer):
		return "Please choose one of the answers."
	case errors.Is(err, quiz.ErrAlreadyAnswered):
		return "You already answered this question."
	default:
		return "Start the quest to get a question."
	}
}

// questError re-renders the quest page with the error for the visitor.
func (s *Server) questError(w http.ResponseWriter, r *http.Request, v *Visitor, err error) {
	status := questErrorStatus(err)
	if status == http.StatusInternalServerError {
		respondWithError(w, s.logger, status, ErrInternalServerError, "Error updating health quest", err)
		return
	}

	v.mu.Lock()
	data := questView(v.quest)
	v.mu.Unlock()

	s.render(w, r, status, "health_quest", "Health Quest", "health-quest", data, questErrorMessage(err))
}

// ShowHealthQuest displays the visitor's quest.
func (s *Server) ShowHealthQuest(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	v.mu.Lock()
	data := questView(v.quest)
	v.mu.Unlock()

	s.renderPage(w, r, "health_quest", "Health Quest", "health-quest", data)
}

// StartQuest loads the first question.
func (s *Server) StartQuest(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	v.mu.Lock()
	_, err := v.quest.Start()
	v.mu.Unlock()
	if err != nil {
		s.questError(w, r, v, err)
		return
	}

	v.Speech.Reset()
	redirect(w, r, "/health-quest")
}

// ChangeQuestCategory switches to an unlocked category.
func (s *Server) ChangeQuestCategory(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	v.mu.Lock()
	_, err := v.quest.ChangeCategory(r.FormValue("category"))
	name := ""
	if c, ok := v.quest.Bank().Category(v.quest.Category()); ok {
		name = c.Name
	}
	v.mu.Unlock()
	if err != nil {
		s.questError(w, r, v, err)
		return
	}

	v.Speech.Reset()
	v.Announcer.Announce("Topic changed to " + name)
	redirect(w, r, "/health-quest")
}

// AnswerQuest scores the selected option.
func (s *Server) AnswerQuest(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	selected, err := strconv.Atoi(r.FormValue("answer"))
	if err != nil {
		s.questError(w, r, v, fmt.Errorf("%w: %q", quiz.ErrInvalidAnswer, r.FormValue("answer")))
		return
	}

	v.mu.Lock()
	out, err := v.quest.SubmitAnswer(selected)
	v.mu.Unlock()
	if err != nil {
		s.questError(w, r, v, err)
		return
	}

	if out.Correct {
		msg := fmt.Sprintf("Correct! You earned %d experience points.", out.XPAwarded)
		if out.Message != "" {
			msg += " " + out.Message
		}
		v.Announcer.Announce(msg)
	} else {
		v.Announcer.Announce(fmt.Sprintf("Not quite. You earned %d experience points for trying.", out.XPAwarded))
	}
	if out.LeveledUp {
		v.Announcer.Announce(fmt.Sprintf("Level up! You reached level %d.", out.Level))
	}
	redirect(w, r, "/health-quest")
}

// NextQuestion loads another question from the current category.
func (s *Server) NextQuestion(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	v.mu.Lock()
	_, err := v.quest.Next()
	v.mu.Unlock()
	if err != nil {
		s.questError(w, r, v, err)
		return
	}

	v.Speech.Reset()
	redirect(w, r, "/health-quest")
}

// ResetQuest clears the visitor's progress.
func (s *Server) ResetQuest(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	v.mu.Lock()
	v.quest.ResetProgress()
	v.mu.Unlock()

	v.Announcer.Announce("Progress reset")
	redirect(w, r, "/health-quest")
}
