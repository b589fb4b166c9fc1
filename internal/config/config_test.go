package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.Equal(t, "sql", cfg.RecordSink)
	assert.Equal(t, 5*time.Second, cfg.RecordTimeout)
	assert.Equal(t, time.Second, cfg.GameTick)
	assert.Equal(t, "./static", cfg.StaticFilesPath)
	assert.Equal(t, "./data/audio", cfg.AudioPath, "audio cache lives outside the static tree")
	assert.Equal(t, 128, cfg.Speech.CacheSize)
	assert.Equal(t, "21m00Tcm4TlvDq8ikWAM", cfg.Speech.VoiceID)
	assert.Equal(t, devSessionSecret, cfg.SessionSecret)
	assert.False(t, cfg.IsProduction())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("RECORD_TIMEOUT", "2s")
	t.Setenv("SPEECH_CACHE_SIZE", "16")
	t.Setenv("ELEVENLABS_API_KEY", "el-key")
	t.Setenv("TAVUS_API_KEY", "tv-key")
	t.Setenv("SES_FROM_EMAIL", "care@example.com")
	t.Setenv("SESSION_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, 2*time.Second, cfg.RecordTimeout)
	assert.Equal(t, 16, cfg.Speech.CacheSize)
	assert.Equal(t, "el-key", cfg.Speech.ElevenLabsAPIKey)
	assert.Equal(t, "tv-key", cfg.Speech.TavusAPIKey)
	assert.Equal(t, "care@example.com", cfg.Email.FromEmail)
	assert.Equal(t, "s3cret", cfg.SessionSecret)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{
			name:    "postgres without url",
			env:     map[string]string{"DATABASE_TYPE": "postgres"},
			wantErr: ErrMissingEnvironmentVariables,
		},
		{
			name:    "rest sink without key",
			env:     map[string]string{"RECORD_SINK": "rest", "REMOTE_URL": "https://project.example.co"},
			wantErr: ErrMissingEnvironmentVariables,
		},
		{
			name:    "unknown sink",
			env:     map[string]string{"RECORD_SINK": "kafka"},
			wantErr: ErrUnsupportedRecordSink,
		},
		{
			name:    "production without secret",
			env:     map[string]string{"APP_ENV": "production"},
			wantErr: ErrMissingEnvironmentVariables,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
