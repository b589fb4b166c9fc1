package content

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Context selects which rule table answers a question.
type Context string

const (
	ContextGeneral  Context = "general"
	ContextSymptoms Context = "symptoms"
	ContextMood     Context = "mood"
	ContextMedicine Context = "medicine"
)

type rule struct {
	Keywords []string `yaml:"keywords"`
	Response string   `yaml:"response"`
}

type ruleSet struct {
	Rules    []rule `yaml:"rules"`
	Fallback string `yaml:"fallback"`
}

// Responder maps free text to a canned paragraph by keyword matching.
type Responder struct {
	sets map[Context]ruleSet
}

// NewResponder parses a YAML rule table keyed by context.
func NewResponder(data []byte) (*Responder, error) {
	var sets map[Context]ruleSet
	if err := yaml.Unmarshal(data, &sets); err != nil {
		return nil, fmt.Errorf("parse responses: %w", err)
	}
	for _, ctx := range []Context{ContextGeneral, ContextSymptoms, ContextMood, ContextMedicine} {
		set, ok := sets[ctx]
		if !ok || set.Fallback == "" {
			return nil, fmt.Errorf("responses: context %q needs a fallback", ctx)
		}
	}
	return &Responder{sets: sets}, nil
}

// Respond returns the first rule response whose keyword occurs in the
// lowercased input, or the context fallback. Unknown contexts answer as
// general.
func (r *Responder) Respond(input string, ctx Context) string {
	set, ok := r.sets[ctx]
	if !ok {
		set = r.sets[ContextGeneral]
	}

	lower := strings.ToLower(input)
	for _, rl := range set.Rules {
		for _, kw := range rl.Keywords {
			if strings.Contains(lower, kw) {
				return rl.Response
			}
		}
	}
	return set.Fallback
}

// ParseContext maps a form value onto a Context, defaulting to general.
func ParseContext(s string) Context {
	switch Context(strings.ToLower(strings.TrimSpace(s))) {
	case ContextSymptoms:
		return ContextSymptoms
	case ContextMood:
		return ContextMood
	case ContextMedicine:
		return ContextMedicine
	default:
		return ContextGeneral
	}
}

// SymptomDescription builds the text fed to the symptoms responder from a
// health form.
func SymptomDescription(symptoms, severity, duration, notes string) string {
	return fmt.Sprintf("Symptoms: %s. Severity: %s. Duration: %s. Additional notes: %s", symptoms, severity, duration, notes)
}

// MoodDescription builds the text fed to the mood responder from a check-in.
func MoodDescription(mood, notes string) string {
	return fmt.Sprintf("User is feeling %s. Additional notes: %s", mood, notes)
}
