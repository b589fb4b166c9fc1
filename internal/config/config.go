package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrUnsupportedRecordSink       = errors.New("unsupported record sink")
)

const devSessionSecret = "carewise-dev-secret-change-me"

// Config holds application configuration loaded from .env, an optional
// config file and environment variables.
type Config struct {
	Env             string        `mapstructure:"env"`
	ServerPort      string        `mapstructure:"port"`
	DatabaseType    string        `mapstructure:"database_type"`
	DatabasePath    string        `mapstructure:"db_path"`
	DatabaseURL     string        `mapstructure:"-"`
	RecordSink      string        `mapstructure:"record_sink"`
	RecordTimeout   time.Duration `mapstructure:"record_timeout"`
	StaticFilesPath string        `mapstructure:"static_path"`
	AudioPath       string        `mapstructure:"audio_path"`
	SessionSecret   string        `mapstructure:"-"`
	VisitorTTL      time.Duration `mapstructure:"visitor_ttl"`
	GameTick        time.Duration `mapstructure:"game_tick"`

	Remote RemoteConfig `mapstructure:"remote"`
	Speech SpeechConfig `mapstructure:"speech"`
	Email  EmailConfig  `mapstructure:"email"`
}

// RemoteConfig points at a PostgREST-compatible project (URL + anon key).
type RemoteConfig struct {
	URL     string `mapstructure:"url"`
	AnonKey string `mapstructure:"-"`
}

// SpeechConfig configures the optional third-party speech and video APIs.
type SpeechConfig struct {
	ElevenLabsAPIKey  string        `mapstructure:"-"`
	ElevenLabsBaseURL string        `mapstructure:"elevenlabs_base_url"`
	VoiceID           string        `mapstructure:"voice_id"`
	TavusAPIKey       string        `mapstructure:"-"`
	TavusBaseURL      string        `mapstructure:"tavus_base_url"`
	CacheSize         int           `mapstructure:"cache_size"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
}

// EmailConfig configures report delivery through Amazon SES.
type EmailConfig struct {
	AWSRegion  string `mapstructure:"aws_region"`
	FromEmail  string `mapstructure:"from_email"`
	FromName   string `mapstructure:"from_name"`
	AppBaseURL string `mapstructure:"app_base_url"`
}

// IsProduction reports whether the app runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from .env, config/config.yaml and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Secrets and legacy names are bound explicitly.
	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("session_secret", "SESSION_SECRET")
	_ = v.BindEnv("remote.url", "REMOTE_URL")
	_ = v.BindEnv("remote_anon_key", "REMOTE_ANON_KEY")
	_ = v.BindEnv("elevenlabs_api_key", "ELEVENLABS_API_KEY")
	_ = v.BindEnv("speech.voice_id", "ELEVENLABS_VOICE_ID")
	_ = v.BindEnv("tavus_api_key", "TAVUS_API_KEY")
	_ = v.BindEnv("email.aws_region", "AWS_REGION")
	_ = v.BindEnv("email.from_email", "SES_FROM_EMAIL")
	_ = v.BindEnv("email.from_name", "SES_FROM_NAME")
	_ = v.BindEnv("email.app_base_url", "APP_BASE_URL")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	cfg.DatabaseURL = v.GetString("database_url")
	cfg.SessionSecret = v.GetString("session_secret")
	cfg.Remote.AnonKey = v.GetString("remote_anon_key")
	cfg.Speech.ElevenLabsAPIKey = v.GetString("elevenlabs_api_key")
	cfg.Speech.TavusAPIKey = v.GetString("tavus_api_key")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("port", "8080")
	v.SetDefault("database_type", "sqlite")
	v.SetDefault("db_path", "./carewise.db")
	v.SetDefault("record_sink", "sql")
	v.SetDefault("record_timeout", "5s")
	v.SetDefault("static_path", "./static")
	v.SetDefault("audio_path", "./data/audio")
	v.SetDefault("visitor_ttl", "24h")
	v.SetDefault("game_tick", "1s")

	v.SetDefault("remote.url", "")

	v.SetDefault("speech.elevenlabs_base_url", "https://api.elevenlabs.io")
	v.SetDefault("speech.voice_id", "21m00Tcm4TlvDq8ikWAM")
	v.SetDefault("speech.tavus_base_url", "https://tavusapi.com")
	v.SetDefault("speech.cache_size", 128)
	v.SetDefault("speech.request_timeout", "10s")

	v.SetDefault("email.aws_region", "us-east-1")
	v.SetDefault("email.from_email", "")
	v.SetDefault("email.from_name", "CareWise")
	v.SetDefault("email.app_base_url", "http://localhost:8080")
}

func (c *Config) validate() error {
	switch strings.ToLower(c.RecordSink) {
	case "sql", "":
		c.RecordSink = "sql"
		switch strings.ToLower(c.DatabaseType) {
		case "postgres", "postgresql", "mysql":
			if c.DatabaseURL == "" {
				return fmt.Errorf("%w: DATABASE_URL", ErrMissingEnvironmentVariables)
			}
		}
	case "rest":
		if c.Remote.URL == "" || c.Remote.AnonKey == "" {
			return fmt.Errorf("%w: REMOTE_URL, REMOTE_ANON_KEY", ErrMissingEnvironmentVariables)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedRecordSink, c.RecordSink)
	}

	if c.SessionSecret == "" {
		if c.IsProduction() {
			return fmt.Errorf("%w: SESSION_SECRET", ErrMissingEnvironmentVariables)
		}
		c.SessionSecret = devSessionSecret
	}

	return nil
}
