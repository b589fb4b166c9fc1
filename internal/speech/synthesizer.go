package speech

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	defaultSynthBaseURL = "https://api.elevenlabs.io"
	defaultVoiceID      = "21m00Tcm4TlvDq8ikWAM"
	defaultCacheSize    = 128
	defaultTimeout      = 10 * time.Second
	audioPrefix         = "speech_"
)

// SynthesizerConfig configures a Synthesizer.
type SynthesizerConfig struct {
	AudioDir   string
	APIKey     string
	VoiceID    string
	BaseURL    string
	CacheSize  int
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Synthesizer turns text into MP3 files through the ElevenLabs API. Files
// are cached on disk under the audio directory and indexed in an LRU; an
// evicted entry deletes its file.
type Synthesizer struct {
	audioDir string
	apiKey   string
	voiceID  string
	baseURL  string
	client   *http.Client
	cache    *lru.Cache[string, string]
	outcomes *prometheus.CounterVec
	logger   *zap.Logger
}

type synthRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// NewSynthesizer creates the audio directory and the cache index. outcomes
// may be nil; otherwise it is labelled by outcome.
func NewSynthesizer(cfg SynthesizerConfig, outcomes *prometheus.CounterVec, logger *zap.Logger) (*Synthesizer, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultSynthBaseURL
	}
	if cfg.VoiceID == "" {
		cfg.VoiceID = defaultVoiceID
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	if err := os.MkdirAll(cfg.AudioDir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio directory: %w", err)
	}

	s := &Synthesizer{
		audioDir: cfg.AudioDir,
		apiKey:   cfg.APIKey,
		voiceID:  cfg.VoiceID,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		client:   client,
		outcomes: outcomes,
		logger:   logger,
	}

	cache, err := lru.NewWithEvict(cfg.CacheSize, func(_ string, filename string) {
		if err := s.DeleteAudioFile(filename); err != nil {
			logger.Warn("failed to delete evicted audio file", zap.String("file", filename), zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}
	s.cache = cache
	return s, nil
}

// Enabled reports whether an API key is configured.
func (s *Synthesizer) Enabled() bool {
	return s.apiKey != ""
}

// Synthesize returns the filename (relative to the audio directory) of an
// MP3 reading text. Any failure is reported as ErrFallback.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty text", ErrFallback)
	}

	key := s.cacheKey(text)
	filename := audioPrefix + key + ".mp3"

	if _, ok := s.cache.Get(key); ok && s.exists(filename) {
		s.count("cache_hit")
		return filename, nil
	}
	if s.exists(filename) {
		s.cache.Add(key, filename)
		s.count("cache_hit")
		return filename, nil
	}

	if !s.Enabled() {
		s.count("fallback")
		return "", fmt.Errorf("%w: no api key configured", ErrFallback)
	}

	if err := s.generate(ctx, text, filepath.Join(s.audioDir, filename)); err != nil {
		s.count("error")
		s.logger.Warn("speech synthesis failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrFallback, err)
	}

	s.cache.Add(key, filename)
	s.count("generated")
	return filename, nil
}

func (s *Synthesizer) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(s.voiceID + "\x00" + text))
	return hex.EncodeToString(sum[:16])
}

func (s *Synthesizer) exists(filename string) bool {
	_, err := os.Stat(filepath.Join(s.audioDir, filename))
	return err == nil
}

func (s *Synthesizer) count(outcome string) {
	if s.outcomes != nil {
		s.outcomes.WithLabelValues(outcome).Inc()
	}
}

func (s *Synthesizer) generate(ctx context.Context, text, outputPath string) error {
	body, err := json.Marshal(synthRequest{
		Text:          text,
		ModelID:       "eleven_monolingual_v1",
		VoiceSettings: voiceSettings{Stability: 0.5, SimilarityBoost: 0.5},
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", s.baseURL, s.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// Write to a temp file first so a concurrent reader never sees a
	// partial MP3.
	tmp, err := os.CreateTemp(s.audioDir, "tmp_*.mp3")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), outputPath)
}

// IndexExisting adds audio files left by a previous run to the cache. Files
// beyond the cache size are evicted and deleted.
func (s *Synthesizer) IndexExisting() (int, error) {
	files, err := s.GetAllAudioFiles()
	if err != nil {
		return 0, err
	}
	for _, f := range files {
		key := strings.TrimSuffix(strings.TrimPrefix(f, audioPrefix), ".mp3")
		s.cache.Add(key, f)
	}
	return len(files), nil
}

// DeleteAudioFile removes an audio file
func (s *Synthesizer) DeleteAudioFile(filename string) error {
	err := os.Remove(filepath.Join(s.audioDir, filepath.Base(filename)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// GetAllAudioFiles returns the synthesized MP3 files in the audio directory
func (s *Synthesizer) GetAllAudioFiles() ([]string, error) {
	entries, err := os.ReadDir(s.audioDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio directory: %w", err)
	}

	var audioFiles []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, audioPrefix) && filepath.Ext(name) == ".mp3" {
			audioFiles = append(audioFiles, name)
		}
	}
	return audioFiles, nil
}
