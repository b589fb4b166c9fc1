// Package remote writes records to a PostgREST-compatible project.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNotConfigured = errors.New("remote store not configured")
	ErrRejected      = errors.New("remote store rejected write")
)

// Client posts rows to {url}/rest/v1/{table}.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
}

// NewClient returns a client for the project at baseURL.
func NewClient(baseURL, anonKey string, timeout time.Duration, httpClient *http.Client) (*Client, error) {
	if baseURL == "" || anonKey == "" {
		return nil, ErrNotConfigured
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    httpClient,
	}, nil
}

// Insert adds one row to table.
func (c *Client) Insert(ctx context.Context, table string, row any) error {
	return c.post(ctx, table, row, "return=minimal")
}

// Upsert inserts or merges one row keyed by the table's primary key.
func (c *Client) Upsert(ctx context.Context, table string, row any) error {
	return c.post(ctx, table, row, "resolution=merge-duplicates,return=minimal")
}

func (c *Client) post(ctx context.Context, table string, row any, prefer string) error {
	body, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode %s row: %w", table, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rest/v1/"+table, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.anonKey)
	req.Header.Set("Prefer", prefer)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("write %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s: status %d: %s", ErrRejected, table, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

// KeyInfo is what can be read from an anon key without verifying it.
type KeyInfo struct {
	Role      string
	Issuer    string
	ExpiresAt time.Time
}

// Expired reports whether the key has an expiry before now.
func (k KeyInfo) Expired(now time.Time) bool {
	return !k.ExpiresAt.IsZero() && k.ExpiresAt.Before(now)
}

// InspectKey decodes the anon key's claims. The signature is not checked;
// the server does that.
func InspectKey(key string) (KeyInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(key, claims); err != nil {
		return KeyInfo{}, fmt.Errorf("inspect anon key: %w", err)
	}

	var info KeyInfo
	if role, ok := claims["role"].(string); ok {
		info.Role = role
	}
	if iss, err := claims.GetIssuer(); err == nil {
		info.Issuer = iss
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, nil
}
