package repository

import (
	"context"
	"fmt"

	"carewise/internal/models"
)

// ListConversations retrieves every conversation, oldest first
func (r *RecordRepository) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, user_id, question, answer, created_at FROM ai_conversations ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	var out []models.Conversation
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Question, &c.Answer, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListQuizResults retrieves every quiz result, oldest first
func (r *RecordRepository) ListQuizResults(ctx context.Context) ([]models.QuizResult, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, user_id, quiz_topic, score, total_questions, created_at FROM quiz_results ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz results: %w", err)
	}
	defer rows.Close()

	var out []models.QuizResult
	for rows.Next() {
		var q models.QuizResult
		if err := rows.Scan(&q.ID, &q.UserID, &q.QuizTopic, &q.Score, &q.TotalQuestions, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quiz result: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// ListGameScores retrieves every game score, oldest first
func (r *RecordRepository) ListGameScores(ctx context.Context) ([]models.GameScore, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, user_id, game_name, score, created_at FROM game_scores ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query game scores: %w", err)
	}
	defer rows.Close()

	var out []models.GameScore
	for rows.Next() {
		var g models.GameScore
		if err := rows.Scan(&g.ID, &g.UserID, &g.GameName, &g.Score, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game score: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ListHealthForms retrieves every health form, oldest first
func (r *RecordRepository) ListHealthForms(ctx context.Context) ([]models.HealthForm, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, symptoms, severity, duration, additional_notes, ai_response, created_at
		FROM health_forms ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query health forms: %w", err)
	}
	defer rows.Close()

	var out []models.HealthForm
	for rows.Next() {
		var h models.HealthForm
		if err := rows.Scan(&h.ID, &h.UserID, &h.Symptoms, &h.Severity, &h.Duration, &h.AdditionalNotes, &h.AIResponse, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan health form: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// ListMoodCheckins retrieves every mood check-in, oldest first
func (r *RecordRepository) ListMoodCheckins(ctx context.Context) ([]models.MoodCheckin, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, user_id, mood, notes, ai_response, created_at FROM mood_checkins ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query mood check-ins: %w", err)
	}
	defer rows.Close()

	var out []models.MoodCheckin
	for rows.Next() {
		var m models.MoodCheckin
		if err := rows.Scan(&m.ID, &m.UserID, &m.Mood, &m.Notes, &m.AIResponse, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan mood check-in: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListPreferences retrieves every stored preference row
func (r *RecordRepository) ListPreferences(ctx context.Context) ([]models.UserPreferences, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT user_id, accessibility_mode, font_preference, voice_enabled, updated_at FROM user_preferences ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer rows.Close()

	var out []models.UserPreferences
	for rows.Next() {
		var p models.UserPreferences
		if err := rows.Scan(&p.UserID, &p.AccessibilityMode, &p.FontPreference, &p.VoiceEnabled, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan preferences: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
