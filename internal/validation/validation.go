package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Field length limits for free-text input.
const (
	MaxQuestionLength = 1000
	MaxNotesLength    = 2000
	MaxShortLength    = 100
)

// Severities accepted by the health form.
var Severities = []string{"mild", "moderate", "severe"}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidateRequired checks that value is present and at most max characters.
func ValidateRequired(field, value string, max int) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return ValidationError{Field: field, Message: field + " is required"}
	}
	return ValidateOptional(field, value, max)
}

// ValidateOptional checks only the length of value.
func ValidateOptional(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return ValidationError{Field: field, Message: fmt.Sprintf("%s must be at most %d characters", field, max)}
	}
	return nil
}

// ValidateSeverity checks the health form severity.
func ValidateSeverity(severity string) error {
	for _, s := range Severities {
		if s == severity {
			return nil
		}
	}
	return ValidationError{Field: "severity", Message: "severity must be mild, moderate or severe"}
}

// ValidateHealthForm checks a symptom submission.
func ValidateHealthForm(symptoms, severity, duration, notes string) error {
	if err := ValidateRequired("symptoms", symptoms, MaxNotesLength); err != nil {
		return err
	}
	if err := ValidateSeverity(severity); err != nil {
		return err
	}
	if err := ValidateRequired("duration", duration, MaxShortLength); err != nil {
		return err
	}
	return ValidateOptional("notes", notes, MaxNotesLength)
}
