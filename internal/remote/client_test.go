package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientRequiresConfig(t *testing.T) {
	_, err := NewClient("", "k", time.Second, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = NewClient("http://x", "", time.Second, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestInsertAndUpsert(t *testing.T) {
	var prefers []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/quiz_results", r.URL.Path)
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon", r.Header.Get("Authorization"))
		prefers = append(prefers, r.Header.Get("Prefer"))

		var row map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&row))
		assert.Equal(t, "v1", row["user_id"])
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL+"/", "anon", time.Second, nil)
	require.NoError(t, err)

	row := map[string]any{"user_id": "v1", "score": 3}
	require.NoError(t, c.Insert(context.Background(), "quiz_results", row))
	require.NoError(t, c.Upsert(context.Background(), "quiz_results", row))

	assert.Equal(t, []string{"return=minimal", "resolution=merge-duplicates,return=minimal"}, prefers)
}

func TestInsertRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"permission denied"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "anon", time.Second, nil)
	require.NoError(t, err)

	err = c.Insert(context.Background(), "game_scores", map[string]any{})
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestInspectKey(t *testing.T) {
	exp := time.Now().Add(-time.Hour).Truncate(time.Second)
	key, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "anon",
		"iss":  "supabase",
		"exp":  exp.Unix(),
	}).SignedString([]byte("whatever"))
	require.NoError(t, err)

	info, err := InspectKey(key)
	require.NoError(t, err)
	assert.Equal(t, "anon", info.Role)
	assert.Equal(t, "supabase", info.Issuer)
	assert.True(t, info.ExpiresAt.Equal(exp))
	assert.True(t, info.Expired(time.Now()))

	_, err = InspectKey("not-a-jwt")
	assert.Error(t, err)
}
