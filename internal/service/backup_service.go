package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"carewise/internal/database"
	"carewise/internal/models"
	"carewise/internal/repository"

	"go.uber.org/zap"
)

const backupVersion = "1.0"

// BackupData represents the complete record store backup structure
type BackupData struct {
	Version       string                   `json:"version"`
	ExportedAt    time.Time                `json:"exported_at"`
	DatabaseType  string                   `json:"database_type"`
	Conversations []models.Conversation    `json:"ai_conversations"`
	QuizResults   []models.QuizResult      `json:"quiz_results"`
	GameScores    []models.GameScore       `json:"game_scores"`
	HealthForms   []models.HealthForm      `json:"health_forms"`
	MoodCheckins  []models.MoodCheckin     `json:"mood_checkins"`
	Preferences   []models.UserPreferences `json:"user_preferences"`
}

// Count returns the number of rows in the backup.
func (b *BackupData) Count() int {
	return len(b.Conversations) + len(b.QuizResults) + len(b.GameScores) +
		len(b.HealthForms) + len(b.MoodCheckins) + len(b.Preferences)
}

// BackupService handles record store backup and restore operations
type BackupService struct {
	db     *database.DB
	logger *zap.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, logger *zap.Logger) *BackupService {
	return &BackupService{db: db, logger: logger}
}

// Export creates a complete backup of the record store to a file
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(ctx, file); err != nil {
		return err
	}
	s.logger.Info("records exported", zap.String("path", outputPath))
	return nil
}

// ExportToWriter exports the record store to an io.Writer
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) error {
	backup, err := s.snapshot(ctx)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	s.logger.Info("export complete",
		zap.Int("ai_conversations", len(backup.Conversations)),
		zap.Int("quiz_results", len(backup.QuizResults)),
		zap.Int("game_scores", len(backup.GameScores)),
		zap.Int("health_forms", len(backup.HealthForms)),
		zap.Int("mood_checkins", len(backup.MoodCheckins)),
		zap.Int("user_preferences", len(backup.Preferences)),
	)
	return nil
}

func (s *BackupService) snapshot(ctx context.Context) (*BackupData, error) {
	repo := repository.NewRecordRepository(s.db)
	backup := &BackupData{
		Version:      backupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.DriverName(),
	}

	var err error
	if backup.Conversations, err = repo.ListConversations(ctx); err != nil {
		return nil, fmt.Errorf("failed to export conversations: %w", err)
	}
	if backup.QuizResults, err = repo.ListQuizResults(ctx); err != nil {
		return nil, fmt.Errorf("failed to export quiz results: %w", err)
	}
	if backup.GameScores, err = repo.ListGameScores(ctx); err != nil {
		return nil, fmt.Errorf("failed to export game scores: %w", err)
	}
	if backup.HealthForms, err = repo.ListHealthForms(ctx); err != nil {
		return nil, fmt.Errorf("failed to export health forms: %w", err)
	}
	if backup.MoodCheckins, err = repo.ListMoodCheckins(ctx); err != nil {
		return nil, fmt.Errorf("failed to export mood check-ins: %w", err)
	}
	if backup.Preferences, err = repo.ListPreferences(ctx); err != nil {
		return nil, fmt.Errorf("failed to export preferences: %w", err)
	}
	return backup, nil
}

// Import restores records from a backup file
func (s *BackupService) Import(ctx context.Context, inputPath string, replace bool) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(ctx, file, replace)
}

// RecordTables lists every record table in the store.
var RecordTables = []string{
	models.TableConversations,
	models.TableQuizResults,
	models.TableGameScores,
	models.TableHealthForms,
	models.TableMoodCheckins,
	models.TableUserPreferences,
}

// ImportFromReader restores records from a backup reader. Records are
// inserted in one transaction; a duplicate id aborts the whole import.
// With replace set the record tables are emptied in the same transaction,
// after the backup has been decoded.
func (s *BackupService) ImportFromReader(ctx context.Context, reader io.Reader, replace bool) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	s.logger.Info("importing backup",
		zap.String("version", backup.Version),
		zap.Time("exported_at", backup.ExportedAt),
		zap.Int("rows", backup.Count()),
	)

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		if replace {
			for _, table := range RecordTables {
				if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
					return fmt.Errorf("failed to clear table %s: %w", table, err)
				}
			}
			s.logger.Info("cleared record tables", zap.Int("tables", len(RecordTables)))
		}

		repo := repository.NewRecordRepository(tx)
		for _, c := range backup.Conversations {
			if err := repo.InsertConversation(ctx, c); err != nil {
				return fmt.Errorf("failed to import conversation %s: %w", c.ID, err)
			}
		}
		for _, q := range backup.QuizResults {
			if err := repo.InsertQuizResult(ctx, q); err != nil {
				return fmt.Errorf("failed to import quiz result %s: %w", q.ID, err)
			}
		}
		for _, g := range backup.GameScores {
			if err := repo.InsertGameScore(ctx, g); err != nil {
				return fmt.Errorf("failed to import game score %s: %w", g.ID, err)
			}
		}
		for _, h := range backup.HealthForms {
			if err := repo.InsertHealthForm(ctx, h); err != nil {
				return fmt.Errorf("failed to import health form %s: %w", h.ID, err)
			}
		}
		for _, m := range backup.MoodCheckins {
			if err := repo.InsertMoodCheckin(ctx, m); err != nil {
				return fmt.Errorf("failed to import mood check-in %s: %w", m.ID, err)
			}
		}
		for _, p := range backup.Preferences {
			if err := repo.UpsertPreferences(ctx, p); err != nil {
				return fmt.Errorf("failed to import preferences for %s: %w", p.UserID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("import completed")
	return nil
}
