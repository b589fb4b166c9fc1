package accessibility

import (
	"strings"

	"carewise/internal/models"
)

// Presentation is what the layout applies to the document root.
type Presentation struct {
	FontFamily string
	FontSize   string
	Classes    []string
}

var fontSizes = map[models.FontSize]string{
	models.FontSmall:      "14px",
	models.FontMedium:     "16px",
	models.FontLarge:      "18px",
	models.FontExtraLarge: "20px",
}

var contrastClasses = map[models.ContrastMode]string{
	models.ContrastLight:  "light-mode",
	models.ContrastMedium: "medium-contrast",
	models.ContrastHigh:   "high-contrast",
}

// Present computes the root styling for settings.
func Present(s models.AccessibilitySettings) Presentation {
	p := Presentation{
		FontFamily: "Inter, sans-serif",
		FontSize:   fontSizes[s.FontSize],
	}
	if s.Mode == models.ModeDyslexiaFriendly {
		p.FontFamily = "OpenDyslexic, sans-serif"
	}
	if p.FontSize == "" {
		p.FontSize = fontSizes[models.FontMedium]
	}

	if c, ok := contrastClasses[s.ContrastMode]; ok {
		p.Classes = append(p.Classes, c)
	}
	// legacy toggle
	if s.HighContrast && s.ContrastMode == models.ContrastLight {
		p.Classes = append(p.Classes, "high-contrast")
	}
	if s.ReducedMotion {
		p.Classes = append(p.Classes, "reduced-motion")
	}
	return p
}

// ClassAttr joins the classes for an HTML class attribute.
func (p Presentation) ClassAttr() string {
	return strings.Join(p.Classes, " ")
}

// Style is the inline style for the root element.
func (p Presentation) Style() string {
	return "font-family: " + p.FontFamily + "; font-size: " + p.FontSize + ";"
}
