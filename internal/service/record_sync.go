package service

import (
	"context"
	"sync"
	"time"

	"carewise/internal/metrics"
	"carewise/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecordSink is a destination for records: the SQL repository or the
// remote REST client.
type RecordSink interface {
	Insert(ctx context.Context, table string, row any) error
	Upsert(ctx context.Context, table string, row any) error
}

// RecordSync writes records in the background. Writes are fire-and-forget:
// a failure is logged and counted but never reaches the visitor. Drain
// waits for in-flight writes during shutdown.
type RecordSync struct {
	sink    RecordSink
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	wg      sync.WaitGroup
}

// NewRecordSync creates a syncer bounded by timeout per write.
func NewRecordSync(sink RecordSink, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *RecordSync {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RecordSync{
		sink:    sink,
		timeout: timeout,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// SaveConversation records an Ask AI exchange.
func (s *RecordSync) SaveConversation(userID, question, answer string) {
	s.write(models.TableConversations, false, models.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Question:  question,
		Answer:    answer,
		CreatedAt: s.now(),
	})
}

// RecordQuizResult records a quiz attempt. It satisfies quiz.Recorder.
func (s *RecordSync) RecordQuizResult(userID, topic string, score, total int) {
	s.write(models.TableQuizResults, false, models.QuizResult{
		ID:             uuid.NewString(),
		UserID:         userID,
		QuizTopic:      topic,
		Score:          score,
		TotalQuestions: total,
		CreatedAt:      s.now(),
	})
}

// SaveGameScore records a finished game.
func (s *RecordSync) SaveGameScore(userID, game string, score int) {
	s.write(models.TableGameScores, false, models.GameScore{
		ID:        uuid.NewString(),
		UserID:    userID,
		GameName:  game,
		Score:     score,
		CreatedAt: s.now(),
	})
}

// SaveHealthForm records a submitted symptom form.
func (s *RecordSync) SaveHealthForm(form models.HealthForm) {
	if form.ID == "" {
		form.ID = uuid.NewString()
	}
	if form.CreatedAt.IsZero() {
		form.CreatedAt = s.now()
	}
	s.write(models.TableHealthForms, false, form)
}

// SaveMoodCheckin records a mental health check-in.
func (s *RecordSync) SaveMoodCheckin(userID, mood, notes, response string) {
	s.write(models.TableMoodCheckins, false, models.MoodCheckin{
		ID:         uuid.NewString(),
		UserID:     userID,
		Mood:       mood,
		Notes:      notes,
		AIResponse: response,
		CreatedAt:  s.now(),
	})
}

// SavePreferences upserts the stored copy of a visitor's settings.
func (s *RecordSync) SavePreferences(userID string, settings models.AccessibilitySettings) {
	s.write(models.TableUserPreferences, true, models.UserPreferences{
		UserID:            userID,
		AccessibilityMode: string(settings.Mode),
		FontPreference:    string(settings.FontSize),
		VoiceEnabled:      settings.VoiceEnabled,
		UpdatedAt:         s.now(),
	})
}

func (s *RecordSync) write(table string, upsert bool, row any) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		var err error
		if upsert {
			err = s.sink.Upsert(ctx, table, row)
		} else {
			err = s.sink.Insert(ctx, table, row)
		}
		if err != nil {
			s.logger.Warn("record write failed", zap.String("table", table), zap.Error(err))
			s.metrics.RecordWrite(table, "error")
			return
		}
		s.metrics.RecordWrite(table, "ok")
	}()
}

// Drain waits for in-flight writes or until ctx is done.
func (s *RecordSync) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
