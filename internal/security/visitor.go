package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const visitorIssuer = "carewise"

// VisitorCookieName holds the signed visitor token.
const VisitorCookieName = "carewise-visitor"

// ErrInvalidVisitorToken is returned for tokens that fail verification.
var ErrInvalidVisitorToken = errors.New("invalid visitor token")

// VisitorTokens issues and verifies the signed cookie carrying an anonymous
// visitor id.
type VisitorTokens struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewVisitorTokens returns a token issuer signing with key.
func NewVisitorTokens(key []byte, ttl time.Duration) *VisitorTokens {
	return &VisitorTokens{key: key, ttl: ttl, now: time.Now}
}

// TTL returns how long an issued token stays valid.
func (v *VisitorTokens) TTL() time.Duration {
	return v.ttl
}

// Issue signs a token for visitorID.
func (v *VisitorTokens) Issue(visitorID string) (string, time.Time, error) {
	now := v.now()
	expires := now.Add(v.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    visitorIssuer,
		Subject:   visitorID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign visitor token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies token and returns the visitor id it carries.
func (v *VisitorTokens) Parse(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(visitorIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidVisitorToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidVisitorToken)
	}
	return claims.Subject, nil
}
