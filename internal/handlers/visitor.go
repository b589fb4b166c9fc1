package handlers

import (
	"context"
	"sync"
	"time"

	"carewise/internal/accessibility"
	"carewise/internal/game"
	"carewise/internal/models"
	"carewise/internal/quiz"
	"carewise/internal/speech"
	"carewise/internal/vault"

	"go.uber.org/zap"
)

type contextKey string

const visitorContextKey contextKey = "visitor"

// maxHistory bounds the exchanges kept per page.
const maxHistory = 20

// Exchange is one question and its canned answer.
type Exchange struct {
	Question string
	Answer   string
	At       time.Time
}

type quizFeedback struct {
	Correct     bool
	Explanation string
}

// lessonQuiz is the in-progress quiz attached to an awareness lesson.
type lessonQuiz struct {
	lessonID  string
	questions []models.Question
	answers   []int
	score     int
	feedback  *quizFeedback
}

func (q *lessonQuiz) done() bool {
	return len(q.answers) >= len(q.questions)
}

type healthReport struct {
	Record vault.Record
	Data   string
}

type moodCheckin struct {
	Mood     models.MoodOption
	Response string
}

type verification struct {
	ID    string
	Valid bool
}

// Visitor is everything the server remembers about one anonymous visitor.
// Fields below mu are guarded by it; the embedded components carry their
// own locks.
type Visitor struct {
	ID        string
	Game      *game.Game
	Runner    *game.Runner
	Speech    *speech.Limiter
	Announcer *accessibility.Announcer
	Vault     *vault.Vault

	mu           sync.Mutex
	quest        *quiz.Engine
	conversation []Exchange
	medicine     []Exchange
	avatar       speech.AvatarResult
	lesson       *lessonQuiz
	location     string
	region       string
	lastForm     *models.HealthForm
	lastReport   *healthReport
	lastMood     *moodCheckin
	verification *verification
}

func appendExchange(history []Exchange, e Exchange) []Exchange {
	history = append(history, e)
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	return history
}

// VisitorFromContext returns the visitor attached by the Visitor middleware.
func VisitorFromContext(ctx context.Context) *Visitor {
	v, ok := ctx.Value(visitorContextKey).(*Visitor)
	if !ok {
		return nil
	}
	return v
}

func withVisitor(ctx context.Context, v *Visitor) context.Context {
	return context.WithValue(ctx, visitorContextKey, v)
}

// newVisitor builds fresh state for id. Game runners tick under the
// server's base context so they outlive the request that started them.
func (s *Server) newVisitor(id string) (*Visitor, error) {
	v := &Visitor{
		ID:        id,
		Speech:    speech.NewLimiter(speech.DefaultPerPrompt),
		Announcer: accessibility.NewAnnouncer(s.announcementTTL),
		Vault:     vault.New(id, s.ledger),
	}

	quest, err := quiz.NewEngine(s.bank, quiz.Config{
		Rules:     s.rules,
		Messages:  s.library.EncouragingMessages,
		Recorder:  s.records,
		VisitorID: id,
	})
	if err != nil {
		return nil, err
	}
	v.quest = quest

	v.Game = game.New(nil, func(score int) {
		s.records.SaveGameScore(id, game.Name, score)
	})
	v.Runner = game.NewRunner(v.Game, s.gameTick, s.activeGames())
	return v, nil
}

// loadVisitor returns the stored visitor for id, creating it on first use.
func (s *Server) loadVisitor(ctx context.Context, id string) (*Visitor, error) {
	s.visitorMu.Lock()
	defer s.visitorMu.Unlock()

	v, ok, err := s.visitors.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ok {
		return v, nil
	}

	v, err = s.newVisitor(id)
	if err != nil {
		return nil, err
	}
	if err := s.visitors.Put(ctx, id, v); err != nil {
		return nil, err
	}
	s.logger.Debug("visitor created", zap.String("visitor_id", id))
	return v, nil
}

// ReleaseVisitor stops a visitor's background work and drops its ledger
// records. It is the eviction callback for the visitor store.
func ReleaseVisitor(_ string, v *Visitor) {
	if v == nil {
		return
	}
	if v.Runner != nil {
		v.Runner.Stop()
	}
	if v.Vault != nil {
		v.Vault.Release()
	}
}
