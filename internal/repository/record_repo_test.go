package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"carewise/internal/database"
	"carewise/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations(context.Background(), zap.NewNop()))
	return db
}

func TestRecordRepository_InsertAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecordRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, repo.Insert(ctx, models.TableConversations, models.Conversation{
		ID: "c1", UserID: "v1", Question: "headache?", Answer: "rest", CreatedAt: now,
	}))
	require.NoError(t, repo.Insert(ctx, models.TableQuizResults, models.QuizResult{
		ID: "q1", UserID: "v1", QuizTopic: "Health Quest - nutrition", Score: 1, TotalQuestions: 1, CreatedAt: now,
	}))
	require.NoError(t, repo.Insert(ctx, models.TableGameScores, models.GameScore{
		ID: "g1", UserID: "v1", GameName: "sunshine-hero", Score: 120, CreatedAt: now,
	}))
	require.NoError(t, repo.Insert(ctx, models.TableHealthForms, models.HealthForm{
		ID: "h1", UserID: "v1", Symptoms: "cough", Severity: "mild", Duration: "2 days", AIResponse: "fluids", CreatedAt: now,
	}))
	require.NoError(t, repo.Insert(ctx, models.TableMoodCheckins, models.MoodCheckin{
		ID: "m1", UserID: "v1", Mood: "okay", AIResponse: "breathe", CreatedAt: now,
	}))

	convs, err := repo.ListConversations(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "headache?", convs[0].Question)
	assert.True(t, convs[0].CreatedAt.Equal(now))

	quiz, err := repo.ListQuizResults(ctx)
	require.NoError(t, err)
	require.Len(t, quiz, 1)
	assert.Equal(t, 1, quiz[0].TotalQuestions)

	games, err := repo.ListGameScores(ctx)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, 120, games[0].Score)

	forms, err := repo.ListHealthForms(ctx)
	require.NoError(t, err)
	require.Len(t, forms, 1)
	assert.Equal(t, "", forms[0].AdditionalNotes)

	moods, err := repo.ListMoodCheckins(ctx)
	require.NoError(t, err)
	require.Len(t, moods, 1)
	assert.Equal(t, "okay", moods[0].Mood)
}

func TestRecordRepository_RejectsMismatchedTable(t *testing.T) {
	repo := NewRecordRepository(setupTestDB(t))
	ctx := context.Background()

	err := repo.Insert(ctx, models.TableGameScores, models.QuizResult{ID: "x"})
	assert.ErrorIs(t, err, ErrUnsupportedRecord)

	err = repo.Insert(ctx, "unknown", struct{}{})
	assert.ErrorIs(t, err, ErrUnsupportedRecord)

	err = repo.Upsert(ctx, models.TableQuizResults, models.QuizResult{})
	assert.ErrorIs(t, err, ErrUnsupportedRecord)
}

func TestRecordRepository_Preferences(t *testing.T) {
	repo := NewRecordRepository(setupTestDB(t))
	ctx := context.Background()

	missing, err := repo.GetPreferences(ctx, "v1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	prefs := models.UserPreferences{
		UserID: "v1", AccessibilityMode: "standard", FontPreference: "medium", VoiceEnabled: true,
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, repo.Upsert(ctx, models.TableUserPreferences, prefs))

	prefs.FontPreference = "large"
	prefs.VoiceEnabled = false
	require.NoError(t, repo.Upsert(ctx, models.TableUserPreferences, prefs))

	got, err := repo.GetPreferences(ctx, "v1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "large", got.FontPreference)
	assert.False(t, got.VoiceEnabled)

	all, err := repo.ListPreferences(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRecordRepository_InsideTransaction(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	err := db.WithTx(ctx, func(tx *database.Tx) error {
		repo := NewRecordRepository(tx)
		if err := repo.InsertGameScore(ctx, models.GameScore{ID: "g1", UserID: "v", GameName: "sunshine-hero", CreatedAt: time.Now()}); err != nil {
			return err
		}
		return repo.InsertGameScore(ctx, models.GameScore{ID: "g1", UserID: "v", GameName: "sunshine-hero", CreatedAt: time.Now()})
	})
	require.Error(t, err)

	games, err := NewRecordRepository(db).ListGameScores(ctx)
	require.NoError(t, err)
	assert.Empty(t, games)
}
