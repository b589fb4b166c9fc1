package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrMissingVisitor is returned when a token is requested without a visitor.
var ErrMissingVisitor = errors.New("visitor ID is required")

// CSRFGenerator generates and validates CSRF tokens using HMAC-SHA256.
// Tokens are derived from the visitor ID and a secret key, so no shared
// state is required.
type CSRFGenerator struct {
	secret []byte
}

// NewCSRFGenerator creates a new stateless HMAC-based CSRF generator.
func NewCSRFGenerator(secret []byte) *CSRFGenerator {
	return &CSRFGenerator{secret: secret}
}

// GenerateToken returns a deterministic CSRF token for the given visitor.
func (g *CSRFGenerator) GenerateToken(visitorID string) (string, error) {
	if visitorID == "" {
		return "", ErrMissingVisitor
	}
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(visitorID))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// ValidateToken reports whether token is the valid CSRF token for visitorID.
func (g *CSRFGenerator) ValidateToken(visitorID, token string) bool {
	if visitorID == "" || token == "" {
		return false
	}
	expected, err := g.GenerateToken(visitorID)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(token))
}
