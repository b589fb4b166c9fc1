package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"carewise/internal/content"
	"carewise/internal/models"

	"go.uber.org/zap"
)

// AwarenessViewData backs the lesson list.
type AwarenessViewData struct {
	Lessons []models.Lesson
}

// LessonQuizView is the visible state of a lesson quiz.
type LessonQuizView struct {
	Index    int
	Total    int
	Score    int
	Done     bool
	Question *models.Question
	Feedback *quizFeedback
}

// LessonViewData backs a single lesson page.
type LessonViewData struct {
	Lesson models.Lesson
	Script string
	Quiz   *LessonQuizView
}

// ShowAwareness lists the lessons.
func (s *Server) ShowAwareness(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, "awareness", "Health Awareness", "awareness", AwarenessViewData{Lessons: s.library.Lessons})
}

func (s *Server) lessonFromPath(w http.ResponseWriter, r *http.Request) (models.Lesson, bool) {
	lesson, ok := s.library.Lesson(r.PathValue("id"))
	if !ok {
		respondWithError(w, s.logger, http.StatusNotFound, ErrNotFound, "", nil)
	}
	return lesson, ok
}

// ShowLesson displays a lesson and its quiz.
func (s *Server) ShowLesson(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())
	lesson, ok := s.lessonFromPath(w, r)
	if !ok {
		return
	}

	data := LessonViewData{Lesson: lesson, Script: content.LessonScript(lesson)}

	v.mu.Lock()
	if q := v.lesson; q != nil && q.lessonID == lesson.ID {
		view := &LessonQuizView{
			Index:    len(q.answers),
			Total:    len(q.questions),
			Score:    q.score,
			Done:     q.done(),
			Feedback: q.feedback,
		}
		if !view.Done {
			question := q.questions[view.Index]
			view.Question = &question
		}
		data.Quiz = view
	}
	v.mu.Unlock()

	s.renderPage(w, r, "lesson", lesson.Title, "awareness", data)
}

// StartLessonQuiz begins, or restarts, the lesson's quiz.
func (s *Server) StartLessonQuiz(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())
	lesson, ok := s.lessonFromPath(w, r)
	if !ok {
		return
	}

	v.mu.Lock()
	v.lesson = &lessonQuiz{lessonID: lesson.ID, questions: content.LessonQuiz(lesson)}
	v.mu.Unlock()

	redirect(w, r, "/awareness/"+lesson.ID+"#quiz-heading")
}

// AnswerLessonQuiz scores one answer. The last answer records the result.
func (s *Server) AnswerLessonQuiz(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())
	lesson, ok := s.lessonFromPath(w, r)
	if !ok {
		return
	}

	selected, err := strconv.Atoi(r.FormValue("answer"))
	if err != nil {
		respondWithError(w, s.logger, http.StatusBadRequest, ErrInvalidFormData, "", nil)
		return
	}

	v.mu.Lock()
	q := v.lesson
	if q == nil || q.lessonID != lesson.ID || q.done() {
		v.mu.Unlock()
		respondWithError(w, s.logger, http.StatusConflict, "No quiz in progress", "", nil)
		return
	}
	question := q.questions[len(q.answers)]
	if selected < 0 || selected >= len(question.Options) {
		v.mu.Unlock()
		respondWithError(w, s.logger, http.StatusBadRequest, ErrInvalidFormData, "", nil)
		return
	}

	correct := selected == question.CorrectIndex
	if correct {
		q.score++
	}
	q.answers = append(q.answers, selected)
	q.feedback = &quizFeedback{Correct: correct, Explanation: question.Explanation}
	finished := q.done()
	score, total := q.score, len(q.questions)
	answers := append([]int(nil), q.answers...)
	v.mu.Unlock()

	if finished {
		s.records.RecordQuizResult(v.ID, lesson.Title, score, total)
		if _, err := s.ledger.StoreQuizCompletion(v.ID, lesson.ID, score, answers); err != nil {
			s.logger.Warn("failed to store quiz completion", zap.String("lesson", lesson.ID), zap.Error(err))
		}
		v.Announcer.Announce(fmt.Sprintf("Quiz complete. You scored %d out of %d.", score, total))
	} else if correct {
		v.Announcer.Announce("Correct!")
	} else {
		v.Announcer.Announce("Not quite.")
	}

	redirect(w, r, "/awareness/"+lesson.ID+"#quiz-heading")
}
