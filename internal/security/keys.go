package security

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Keys holds the per-purpose secrets derived from SESSION_SECRET.
type Keys struct {
	CSRF    []byte
	Visitor []byte
}

// DeriveKeys expands secret into independent CSRF and visitor-token keys.
func DeriveKeys(secret string) (Keys, error) {
	if secret == "" {
		return Keys{}, fmt.Errorf("derive keys: empty secret")
	}
	csrf, err := derive(secret, "carewise csrf")
	if err != nil {
		return Keys{}, err
	}
	visitor, err := derive(secret, "carewise visitor")
	if err != nil {
		return Keys{}, err
	}
	return Keys{CSRF: csrf, Visitor: visitor}, nil
}

func derive(secret, info string) ([]byte, error) {
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", info, err)
	}
	return key, nil
}
