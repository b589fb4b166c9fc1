package quiz

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"time"

	"carewise/internal/models"
)

var (
	ErrUnknownCategory  = errors.New("unknown category")
	ErrCategoryLocked   = errors.New("category is locked")
	ErrEmptyCategory    = errors.New("category has no questions")
	ErrNotStarted       = errors.New("quest has not started")
	ErrNoActiveQuestion = errors.New("no active question")
	ErrInvalidAnswer    = errors.New("answer index out of range")
	ErrAlreadyAnswered  = errors.New("question already answered")
)

// Rules is the reward and leveling curve.
type Rules struct {
	CorrectReward   int
	IncorrectReward int
	LevelThreshold  int
}

// DefaultRules awards 10 XP for a correct answer, 5 XP for a wrong one and
// levels up every 50 XP.
var DefaultRules = Rules{CorrectReward: 10, IncorrectReward: 5, LevelThreshold: 50}

// LevelFor returns floor(experience / threshold) + 1.
func (r Rules) LevelFor(experience int) int {
	return experience/r.LevelThreshold + 1
}

func (r Rules) validate() error {
	if r.LevelThreshold <= 0 {
		return fmt.Errorf("level threshold must be positive, got %d", r.LevelThreshold)
	}
	if r.CorrectReward < 0 || r.IncorrectReward < 0 {
		return fmt.Errorf("rewards must not be negative")
	}
	return nil
}

// Recorder receives the outcome of every answered question. Implementations
// must not block.
type Recorder interface {
	RecordQuizResult(visitorID, topic string, score, total int)
}

// Config configures an Engine. Zero values fall back to DefaultRules, a
// time-seeded source and no recorder.
type Config struct {
	Rules     Rules
	Rand      *rand.Rand
	Messages  []string
	Recorder  Recorder
	VisitorID string
}

// Outcome describes a scored answer.
type Outcome struct {
	Question      models.Question
	SelectedIndex int
	Correct       bool
	XPAwarded     int
	LeveledUp     bool
	Level         int
	Message       string
}

// Engine is one visitor's health quest. It is not safe for concurrent use;
// callers serialize access per visitor.
type Engine struct {
	bank      *Bank
	rules     Rules
	rng       *rand.Rand
	messages  []string
	recorder  Recorder
	visitorID string

	progress models.PlayerProgress
	visited  map[string]bitset
	category string
	started  bool
	current  *models.Question
	answered bool
	last     *Outcome
}

// NewEngine returns an engine at level 1 with the first category selected.
func NewEngine(bank *Bank, cfg Config) (*Engine, error) {
	rules := cfg.Rules
	if rules == (Rules{}) {
		rules = DefaultRules
	}
	if err := rules.validate(); err != nil {
		return nil, err
	}

	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	e := &Engine{
		bank:      bank,
		rules:     rules,
		rng:       rng,
		messages:  cfg.Messages,
		recorder:  cfg.Recorder,
		visitorID: cfg.VisitorID,
	}
	e.ResetProgress()
	return e, nil
}

// Start begins the quest and loads a question from the selected category.
func (e *Engine) Start() (models.Question, error) {
	q, err := e.SelectQuestion(e.category)
	if err != nil {
		return models.Question{}, err
	}
	e.started = true
	return q, nil
}

// SelectQuestion picks uniformly at random among the category's questions
// not yet used this cycle. Once every question was used the cycle restarts,
// skipping the question just served when there is another to choose.
func (e *Engine) SelectQuestion(categoryID string) (models.Question, error) {
	if _, ok := e.bank.Category(categoryID); !ok {
		return models.Question{}, fmt.Errorf("%w: %s", ErrUnknownCategory, categoryID)
	}
	if !e.progress.IsUnlocked(categoryID) {
		return models.Question{}, fmt.Errorf("%w: %s", ErrCategoryLocked, categoryID)
	}

	questions := e.bank.Questions(categoryID)
	if len(questions) == 0 {
		return models.Question{}, fmt.Errorf("%w: %s", ErrEmptyCategory, categoryID)
	}

	used, ok := e.visited[categoryID]
	if !ok {
		used = newBitset(len(questions))
		e.visited[categoryID] = used
	}

	candidates := unused(used, len(questions))
	if len(candidates) == 0 {
		used.reset()
		candidates = unused(used, len(questions))
		if e.current != nil && len(candidates) > 1 {
			candidates = slices.DeleteFunc(candidates, func(i int) bool {
				return questions[i].ID == e.current.ID
			})
		}
	}

	idx := candidates[e.rng.Intn(len(candidates))]
	used.set(idx)

	q := questions[idx]
	e.category = categoryID
	e.current = &q
	e.answered = false
	e.last = nil
	return q, nil
}

func unused(used bitset, n int) []int {
	var out []int
	for i := 0; i < n; i++ {
		if !used.has(i) {
			out = append(out, i)
		}
	}
	return out
}

// Next loads another question from the current category.
func (e *Engine) Next() (models.Question, error) {
	if !e.started {
		return models.Question{}, ErrNotStarted
	}
	return e.SelectQuestion(e.category)
}

// ChangeCategory switches to an unlocked category. When the quest has
// started a question from the new category is loaded and returned.
func (e *Engine) ChangeCategory(categoryID string) (*models.Question, error) {
	if _, ok := e.bank.Category(categoryID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, categoryID)
	}
	if !e.progress.IsUnlocked(categoryID) {
		return nil, fmt.Errorf("%w: %s", ErrCategoryLocked, categoryID)
	}

	e.category = categoryID
	if !e.started {
		e.current = nil
		return nil, nil
	}

	q, err := e.SelectQuestion(categoryID)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// SubmitAnswer scores the selected option of the active question, awards
// experience, recomputes level and unlocked categories, and hands the
// result to the recorder.
func (e *Engine) SubmitAnswer(selectedIndex int) (Outcome, error) {
	if e.current == nil {
		return Outcome{}, ErrNoActiveQuestion
	}
	if e.answered {
		return Outcome{}, ErrAlreadyAnswered
	}
	q := *e.current
	if selectedIndex < 0 || selectedIndex >= len(q.Options) {
		return Outcome{}, fmt.Errorf("%w: %d", ErrInvalidAnswer, selectedIndex)
	}

	correct := selectedIndex == q.CorrectIndex
	award := e.rules.IncorrectReward
	if correct {
		award = e.rules.CorrectReward
		e.progress.CorrectAnswers++
	}
	e.progress.QuestionsAnswered++
	e.progress.Experience += award

	previous := e.progress.Level
	e.progress.Level = e.rules.LevelFor(e.progress.Experience)
	e.progress.UnlockedCategories = e.bank.UnlockedAt(e.progress.Level)
	e.answered = true

	out := Outcome{
		Question:      q,
		SelectedIndex: selectedIndex,
		Correct:       correct,
		XPAwarded:     award,
		LeveledUp:     e.progress.Level > previous,
		Level:         e.progress.Level,
	}
	if correct && len(e.messages) > 0 {
		out.Message = e.messages[e.rng.Intn(len(e.messages))]
	}
	e.last = &out

	if e.recorder != nil {
		score := 0
		if correct {
			score = 1
		}
		e.recorder.RecordQuizResult(e.visitorID, "Health Quest - "+q.Category, score, 1)
	}

	return out, nil
}

// ResetProgress returns the engine to its initial state.
func (e *Engine) ResetProgress() {
	e.progress = models.PlayerProgress{
		Level:              1,
		Experience:         0,
		QuestionsAnswered:  0,
		CorrectAnswers:     0,
		UnlockedCategories: e.bank.UnlockedAt(1),
	}
	e.visited = make(map[string]bitset)
	e.category = e.bank.Categories()[0].ID
	e.started = false
	e.current = nil
	e.answered = false
	e.last = nil
}

// Progress returns a copy of the player's progress.
func (e *Engine) Progress() models.PlayerProgress {
	p := e.progress
	p.UnlockedCategories = append([]string(nil), e.progress.UnlockedCategories...)
	return p
}

// Accuracy is the rounded percentage of correct answers, 0 before any answer.
func (e *Engine) Accuracy() int {
	if e.progress.QuestionsAnswered == 0 {
		return 0
	}
	return int(math.Round(float64(e.progress.CorrectAnswers) / float64(e.progress.QuestionsAnswered) * 100))
}

// Current returns the active question, if any.
func (e *Engine) Current() (models.Question, bool) {
	if e.current == nil {
		return models.Question{}, false
	}
	return *e.current, true
}

// LastOutcome returns the outcome of the active question once answered.
func (e *Engine) LastOutcome() (Outcome, bool) {
	if e.last == nil {
		return Outcome{}, false
	}
	return *e.last, true
}

// Answered reports whether the active question has been answered.
func (e *Engine) Answered() bool { return e.answered }

// Started reports whether Start has been called since the last reset.
func (e *Engine) Started() bool { return e.started }

// Category returns the selected category id.
func (e *Engine) Category() string { return e.category }

// Rules returns the engine's reward curve.
func (e *Engine) Rules() Rules { return e.rules }

// Bank returns the question bank.
func (e *Engine) Bank() *Bank { return e.bank }
