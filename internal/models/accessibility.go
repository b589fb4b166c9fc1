package models

import "fmt"

// AccessibilityMode is a named bundle of presentation defaults.
type AccessibilityMode string

const (
	ModeStandard         AccessibilityMode = "standard"
	ModeVisualImpairment AccessibilityMode = "visual-impairment"
	ModeCognitiveSupport AccessibilityMode = "cognitive-support"
	ModeDyslexiaFriendly AccessibilityMode = "dyslexia-friendly"
)

// FontSize is the root font size preset.
type FontSize string

const (
	FontSmall      FontSize = "small"
	FontMedium     FontSize = "medium"
	FontLarge      FontSize = "large"
	FontExtraLarge FontSize = "extra-large"
)

// ContrastMode selects the colour scheme.
type ContrastMode string

const (
	ContrastLight  ContrastMode = "light"
	ContrastMedium ContrastMode = "medium"
	ContrastHigh   ContrastMode = "high"
)

// AccessibilityModes lists the selectable modes in display order.
var AccessibilityModes = []AccessibilityMode{ModeStandard, ModeVisualImpairment, ModeCognitiveSupport, ModeDyslexiaFriendly}

// FontSizes lists the selectable font sizes in display order.
var FontSizes = []FontSize{FontSmall, FontMedium, FontLarge, FontExtraLarge}

// ContrastModes lists the selectable contrast modes in display order.
var ContrastModes = []ContrastMode{ContrastLight, ContrastMedium, ContrastHigh}

// AccessibilitySettings is the per-browser presentation configuration.
// JSON field names match the persisted cookie format.
type AccessibilitySettings struct {
	Mode          AccessibilityMode `json:"mode"`
	FontSize      FontSize          `json:"fontSize"`
	HighContrast  bool              `json:"highContrast"`
	VoiceEnabled  bool              `json:"voiceEnabled"`
	ReducedMotion bool              `json:"reducedMotion"`
	ContrastMode  ContrastMode      `json:"contrastMode"`
}

// DefaultAccessibilitySettings returns the settings used before anything is saved.
func DefaultAccessibilitySettings() AccessibilitySettings {
	return AccessibilitySettings{
		Mode:          ModeStandard,
		FontSize:      FontMedium,
		HighContrast:  false,
		VoiceEnabled:  true,
		ReducedMotion: false,
		ContrastMode:  ContrastLight,
	}
}

// Validate checks that every enumerated field holds a known value.
func (s AccessibilitySettings) Validate() error {
	if !s.Mode.Valid() {
		return fmt.Errorf("invalid accessibility mode %q", s.Mode)
	}
	if !s.FontSize.Valid() {
		return fmt.Errorf("invalid font size %q", s.FontSize)
	}
	if !s.ContrastMode.Valid() {
		return fmt.Errorf("invalid contrast mode %q", s.ContrastMode)
	}
	return nil
}

func (m AccessibilityMode) Valid() bool {
	for _, v := range AccessibilityModes {
		if v == m {
			return true
		}
	}
	return false
}

func (f FontSize) Valid() bool {
	for _, v := range FontSizes {
		if v == f {
			return true
		}
	}
	return false
}

func (c ContrastMode) Valid() bool {
	for _, v := range ContrastModes {
		if v == c {
			return true
		}
	}
	return false
}
