// Package accessibility persists a visitor's presentation settings and
// computes how the layout applies them.
package accessibility

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"carewise/internal/models"
	"carewise/internal/security"

	"go.uber.org/zap"
)

// CookieName holds the serialized settings.
const CookieName = "carewise-accessibility"

// Client hint headers consulted for system preferences.
const (
	HintReducedMotion = "Sec-CH-Prefers-Reduced-Motion"
	HintColorScheme   = "Sec-CH-Prefers-Color-Scheme"
)

// ErrMalformedSettings is returned when a stored value cannot be decoded.
var ErrMalformedSettings = errors.New("malformed accessibility settings")

// Store reads and writes the settings cookie.
type Store struct {
	logger *zap.Logger
}

// NewStore returns a cookie-backed settings store.
func NewStore(logger *zap.Logger) *Store {
	return &Store{logger: logger}
}

// Load returns the visitor's settings and whether any were saved. Saved
// values are merged over the defaults; a malformed cookie is logged and the
// defaults kept. System preferences from client hints are applied last.
func (s *Store) Load(r *http.Request) (models.AccessibilitySettings, bool) {
	settings := models.DefaultAccessibilitySettings()
	saved := false

	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		decoded, err := Decode(c.Value)
		if err != nil {
			s.logger.Warn("ignoring accessibility cookie", zap.Error(err))
		} else {
			settings = decoded
			saved = true
		}
	}

	if r.Header.Get(HintReducedMotion) == "reduce" {
		settings.ReducedMotion = true
	}
	if r.Header.Get(HintColorScheme) == "dark" && !saved {
		settings.ContrastMode = models.ContrastHigh
	}

	return settings, saved
}

// Save writes the full settings object to the cookie.
func (s *Store) Save(w http.ResponseWriter, r *http.Request, settings models.AccessibilitySettings) error {
	value, err := Encode(settings)
	if err != nil {
		return err
	}
	http.SetCookie(w, security.CreatePreferenceCookie(r, CookieName, value))
	return nil
}

// Encode serializes settings for the cookie.
func Encode(settings models.AccessibilitySettings) (string, error) {
	if err := settings.Validate(); err != nil {
		return "", err
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return "", fmt.Errorf("encode settings: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode parses a cookie value, filling fields it does not name with defaults.
func Decode(value string) (models.AccessibilitySettings, error) {
	settings := models.DefaultAccessibilitySettings()

	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return settings, fmt.Errorf("%w: %v", ErrMalformedSettings, err)
	}

	merged := settings
	if err := json.Unmarshal(data, &merged); err != nil {
		return settings, fmt.Errorf("%w: %v", ErrMalformedSettings, err)
	}
	if err := merged.Validate(); err != nil {
		return settings, fmt.Errorf("%w: %v", ErrMalformedSettings, err)
	}
	return merged, nil
}
