package database

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "carewise.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations(context.Background(), zap.NewNop()))
	return db
}

func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()

	tables := []string{"ai_conversations", "quiz_results", "game_scores", "user_preferences", "health_forms", "mood_checkins"}
	for _, table := range tables {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s not found", table)
	}

	t.Run("migrations are idempotent", func(t *testing.T) {
		require.NoError(t, db.RunMigrations(ctx, zap.NewNop()))

		var count int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM migrations").Scan(&count))
		assert.Equal(t, 1, count)
	})
}

func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()
	insert := "INSERT INTO game_scores (id, user_id, game_name, score, created_at) VALUES (?, ?, ?, ?, ?)"

	err := db.WithTx(ctx, func(tx *Tx) error {
		_, err := tx.ExecContext(ctx, insert, "g1", "visitor-1", "sunshine-hero", 40, time.Now())
		return err
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM game_scores WHERE id = ?", "g1").Scan(&count))
	assert.Equal(t, 1, count)

	err = db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, insert, "g2", "visitor-1", "sunshine-hero", 10, time.Now()); err != nil {
			return err
		}
		// Duplicate primary key forces a rollback of g2.
		_, err := tx.ExecContext(ctx, insert, "g1", "visitor-1", "sunshine-hero", 10, time.Now())
		return err
	})
	require.Error(t, err)

	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM game_scores WHERE id = ?", "g2").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestPreferencesUpsert(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()
	query := db.Dialect.UpsertPreferencesQuery()

	_, err := db.ExecContext(ctx, query, "visitor-1", "standard", "medium", true, time.Now())
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, query, "visitor-1", "dyslexia-friendly", "large", false, time.Now())
	require.NoError(t, err)

	var mode, font string
	var voice bool
	err = db.QueryRowContext(ctx, "SELECT accessibility_mode, font_preference, voice_enabled FROM user_preferences WHERE user_id = ?", "visitor-1").
		Scan(&mode, &font, &voice)
	require.NoError(t, err)
	assert.Equal(t, "dyslexia-friendly", mode)
	assert.Equal(t, "large", font)
	assert.False(t, voice)
}

func TestConcurrentAccess(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := openTestDB(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := db.ExecContext(ctx,
				"INSERT INTO quiz_results (id, user_id, quiz_topic, score, total_questions, created_at) VALUES (?, ?, ?, ?, ?, ?)",
				fmt.Sprintf("q-%d", i), "visitor-1", "Health Quest - basics", 1, 1, time.Now())
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM quiz_results").Scan(&count))
	assert.Equal(t, 20, count)
}
