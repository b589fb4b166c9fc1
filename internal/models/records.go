package models

import "time"

// Record types mirror the remote tables. They are insert-only; the JSON tags
// are the column names used by the REST sink and the backup tool.

// Conversation is one Ask AI question and its canned answer.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// QuizResult is one scored quiz attempt.
type QuizResult struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	QuizTopic      string    `json:"quiz_topic"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	CreatedAt      time.Time `json:"created_at"`
}

// GameScore is the final score of a finished game.
type GameScore struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	GameName  string    `json:"game_name"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// UserPreferences is the stored copy of a visitor's accessibility choice.
type UserPreferences struct {
	UserID            string    `json:"user_id"`
	AccessibilityMode string    `json:"accessibility_mode"`
	FontPreference    string    `json:"font_preference"`
	VoiceEnabled      bool      `json:"voice_enabled"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// HealthForm is a submitted symptom form with the generated guidance.
type HealthForm struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Symptoms        string    `json:"symptoms"`
	Severity        string    `json:"severity"`
	Duration        string    `json:"duration"`
	AdditionalNotes string    `json:"additional_notes"`
	AIResponse      string    `json:"ai_response"`
	CreatedAt       time.Time `json:"created_at"`
}

// MoodCheckin is a mental health check-in.
type MoodCheckin struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Mood       string    `json:"mood"`
	Notes      string    `json:"notes"`
	AIResponse string    `json:"ai_response"`
	CreatedAt  time.Time `json:"created_at"`
}

// Table names in the record store.
const (
	TableConversations   = "ai_conversations"
	TableQuizResults     = "quiz_results"
	TableGameScores      = "game_scores"
	TableUserPreferences = "user_preferences"
	TableHealthForms     = "health_forms"
	TableMoodCheckins    = "mood_checkins"
)
