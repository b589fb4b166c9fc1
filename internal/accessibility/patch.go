package accessibility

import (
	"fmt"
	"net/url"
	"strconv"

	"carewise/internal/models"
)

// Patch is a partial settings update. Nil fields are left unchanged.
type Patch struct {
	Mode          *models.AccessibilityMode `json:"mode,omitempty"`
	FontSize      *models.FontSize          `json:"fontSize,omitempty"`
	HighContrast  *bool                     `json:"highContrast,omitempty"`
	VoiceEnabled  *bool                     `json:"voiceEnabled,omitempty"`
	ReducedMotion *bool                     `json:"reducedMotion,omitempty"`
	ContrastMode  *models.ContrastMode      `json:"contrastMode,omitempty"`
}

// Apply merges p over current. The result is validated as a whole; on error
// current is returned unchanged.
func (p Patch) Apply(current models.AccessibilitySettings) (models.AccessibilitySettings, error) {
	next := current
	if p.Mode != nil {
		next.Mode = *p.Mode
	}
	if p.FontSize != nil {
		next.FontSize = *p.FontSize
	}
	if p.HighContrast != nil {
		next.HighContrast = *p.HighContrast
	}
	if p.VoiceEnabled != nil {
		next.VoiceEnabled = *p.VoiceEnabled
	}
	if p.ReducedMotion != nil {
		next.ReducedMotion = *p.ReducedMotion
	}
	if p.ContrastMode != nil {
		next.ContrastMode = *p.ContrastMode
	}
	if err := next.Validate(); err != nil {
		return current, err
	}
	return next, nil
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}

// PatchFromForm reads the fields present in a submitted settings form.
// Toggles repeat their name with a hidden "false" ahead of the checkbox, so
// the last value wins.
func PatchFromForm(form url.Values) (Patch, error) {
	var p Patch

	if v, ok := last(form, "mode"); ok {
		m := models.AccessibilityMode(v)
		p.Mode = &m
	}
	if v, ok := last(form, "fontSize"); ok {
		f := models.FontSize(v)
		p.FontSize = &f
	}
	if v, ok := last(form, "contrastMode"); ok {
		c := models.ContrastMode(v)
		p.ContrastMode = &c
	}

	toggles := []struct {
		name string
		dst  **bool
	}{
		{"highContrast", &p.HighContrast},
		{"voiceEnabled", &p.VoiceEnabled},
		{"reducedMotion", &p.ReducedMotion},
	}
	for _, t := range toggles {
		v, ok := last(form, t.name)
		if !ok {
			continue
		}
		b, err := parseToggle(v)
		if err != nil {
			return Patch{}, fmt.Errorf("%s: %w", t.name, err)
		}
		*t.dst = &b
	}

	return p, nil
}

func last(form url.Values, key string) (string, bool) {
	vs, ok := form[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[len(vs)-1], true
}

func parseToggle(v string) (bool, error) {
	if v == "on" {
		return true, nil
	}
	return strconv.ParseBool(v)
}
