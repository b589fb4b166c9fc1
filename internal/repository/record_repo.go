package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"carewise/internal/database"
	"carewise/internal/models"
)

// ErrUnsupportedRecord is returned when a row does not belong to the table.
var ErrUnsupportedRecord = errors.New("unsupported record for table")

// RecordRepository handles database operations for the insert-only record
// tables and the preferences upsert.
type RecordRepository struct {
	db database.DBTX
}

// NewRecordRepository creates a repository over a DB or a Tx.
func NewRecordRepository(db database.DBTX) *RecordRepository {
	return &RecordRepository{db: db}
}

// Insert adds row to table. The row type must match the table.
func (r *RecordRepository) Insert(ctx context.Context, table string, row any) error {
	switch v := row.(type) {
	case models.Conversation:
		return r.check(table, models.TableConversations, r.InsertConversation(ctx, v))
	case models.QuizResult:
		return r.check(table, models.TableQuizResults, r.InsertQuizResult(ctx, v))
	case models.GameScore:
		return r.check(table, models.TableGameScores, r.InsertGameScore(ctx, v))
	case models.HealthForm:
		return r.check(table, models.TableHealthForms, r.InsertHealthForm(ctx, v))
	case models.MoodCheckin:
		return r.check(table, models.TableMoodCheckins, r.InsertMoodCheckin(ctx, v))
	case models.UserPreferences:
		return r.check(table, models.TableUserPreferences, r.UpsertPreferences(ctx, v))
	}
	return fmt.Errorf("%w: %s (%T)", ErrUnsupportedRecord, table, row)
}

// Upsert writes row, replacing an existing one with the same key. Only
// user_preferences has a natural key.
func (r *RecordRepository) Upsert(ctx context.Context, table string, row any) error {
	prefs, ok := row.(models.UserPreferences)
	if !ok || table != models.TableUserPreferences {
		return fmt.Errorf("%w: %s (%T)", ErrUnsupportedRecord, table, row)
	}
	return r.UpsertPreferences(ctx, prefs)
}

func (r *RecordRepository) check(table, want string, err error) error {
	if table != want {
		return fmt.Errorf("%w: %s", ErrUnsupportedRecord, table)
	}
	return err
}

// InsertConversation stores an Ask AI exchange
func (r *RecordRepository) InsertConversation(ctx context.Context, c models.Conversation) error {
	query := "INSERT INTO ai_conversations (id, user_id, question, answer, created_at) VALUES (?, ?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, query, c.ID, c.UserID, c.Question, c.Answer, c.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}
	return nil
}

// InsertQuizResult stores a scored quiz attempt
func (r *RecordRepository) InsertQuizResult(ctx context.Context, q models.QuizResult) error {
	query := "INSERT INTO quiz_results (id, user_id, quiz_topic, score, total_questions, created_at) VALUES (?, ?, ?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, query, q.ID, q.UserID, q.QuizTopic, q.Score, q.TotalQuestions, q.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert quiz result: %w", err)
	}
	return nil
}

// InsertGameScore stores a finished game's score
func (r *RecordRepository) InsertGameScore(ctx context.Context, g models.GameScore) error {
	query := "INSERT INTO game_scores (id, user_id, game_name, score, created_at) VALUES (?, ?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, query, g.ID, g.UserID, g.GameName, g.Score, g.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert game score: %w", err)
	}
	return nil
}

// InsertHealthForm stores a submitted symptom form
func (r *RecordRepository) InsertHealthForm(ctx context.Context, h models.HealthForm) error {
	query := `INSERT INTO health_forms (id, user_id, symptoms, severity, duration, additional_notes, ai_response, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, h.ID, h.UserID, h.Symptoms, h.Severity, h.Duration, h.AdditionalNotes, h.AIResponse, h.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert health form: %w", err)
	}
	return nil
}

// InsertMoodCheckin stores a mental health check-in
func (r *RecordRepository) InsertMoodCheckin(ctx context.Context, m models.MoodCheckin) error {
	query := "INSERT INTO mood_checkins (id, user_id, mood, notes, ai_response, created_at) VALUES (?, ?, ?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, query, m.ID, m.UserID, m.Mood, m.Notes, m.AIResponse, m.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert mood check-in: %w", err)
	}
	return nil
}

// UpsertPreferences inserts or replaces a visitor's stored preferences
func (r *RecordRepository) UpsertPreferences(ctx context.Context, p models.UserPreferences) error {
	query := r.db.GetDialect().UpsertPreferencesQuery()
	if _, err := r.db.ExecContext(ctx, query, p.UserID, p.AccessibilityMode, p.FontPreference, p.VoiceEnabled, p.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert preferences: %w", err)
	}
	return nil
}

// GetPreferences retrieves a visitor's stored preferences
func (r *RecordRepository) GetPreferences(ctx context.Context, userID string) (*models.UserPreferences, error) {
	query := "SELECT user_id, accessibility_mode, font_preference, voice_enabled, updated_at FROM user_preferences WHERE user_id = ?"
	p := &models.UserPreferences{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&p.UserID, &p.AccessibilityMode, &p.FontPreference, &p.VoiceEnabled, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return p, nil
}
