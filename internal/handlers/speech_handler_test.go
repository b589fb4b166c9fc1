package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"carewise/internal/speech"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fakeElevenLabs(t *testing.T, transcript string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/v1/text-to-speech/"):
			w.Header().Set("Content-Type", "audio/mpeg")
			_, _ = w.Write([]byte("mp3"))
		case r.URL.Path == "/v1/speech-to-text":
			_, _ = w.Write([]byte(`{"text":"` + transcript + `"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func withElevenLabs(t *testing.T, srv *httptest.Server) serverOption {
	return func(o *Options) {
		dir := t.TempDir()
		synth, err := speech.NewSynthesizer(speech.SynthesizerConfig{
			AudioDir:   dir,
			APIKey:     "key",
			BaseURL:    srv.URL,
			HTTPClient: srv.Client(),
		}, nil, zap.NewNop())
		require.NoError(t, err)
		o.Synthesizer = synth
		o.Recognizer = speech.NewRecognizer("key", srv.URL, 0, srv.Client())
		o.AudioDir = dir
	}
}

func TestSpeakFallsBackToBrowserVoice(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)

	rec := c.postJSON("/api/speech", map[string]any{"text": "Drink water", "avatar": true})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeJSON[SpeechResponse](t, rec)
	assert.True(t, resp.Spoken)
	assert.True(t, resp.Fallback)
	require.NotNil(t, resp.Voice)
	assert.Equal(t, speech.AvatarVoice, *resp.Voice)
}

func TestSpeakWithHostedVoice(t *testing.T) {
	srv := fakeElevenLabs(t, "")
	ts := newTestServer(t, withElevenLabs(t, srv))
	c := ts.newClient(t)

	rec := c.postJSON("/api/speech", map[string]any{"text": "Drink water"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeJSON[SpeechResponse](t, rec)
	require.True(t, strings.HasPrefix(resp.URL, "/audio/"), resp.URL)
	assert.False(t, resp.Fallback)

	audio := c.get(resp.URL)
	require.Equal(t, http.StatusOK, audio.Code)
	assert.Equal(t, "mp3", audio.Body.String())
}

func TestSpeakHonoursLimitAndReset(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)

	for i := 0; i < speech.DefaultPerPrompt; i++ {
		resp := decodeJSON[SpeechResponse](t, c.postJSON("/api/speech", map[string]any{"text": "Hello"}))
		assert.True(t, resp.Spoken)
	}
	resp := decodeJSON[SpeechResponse](t, c.postJSON("/api/speech", map[string]any{"text": "Hello"}))
	assert.False(t, resp.Spoken)
	assert.Equal(t, "limit", resp.Reason)

	rec := c.postJSON("/api/speech/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, speech.DefaultPerPrompt, decodeJSON[map[string]int](t, rec)["remaining"])

	resp = decodeJSON[SpeechResponse](t, c.postJSON("/api/speech", map[string]any{"text": "Hello"}))
	assert.True(t, resp.Spoken)
}

func TestSpeakRespectsVoiceSetting(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)

	require.Equal(t, http.StatusOK, c.postJSON("/api/accessibility", map[string]any{"voiceEnabled": false}).Code)

	resp := decodeJSON[SpeechResponse](t, c.postJSON("/api/speech", map[string]any{"text": "Hello"}))
	assert.False(t, resp.Spoken)
	assert.Equal(t, "voice disabled", resp.Reason)
}

func TestSpeakRejectsEmptyText(t *testing.T) {
	ts := newTestServer(t)
	c := ts.newClient(t)

	rec := c.postJSON("/api/speech", map[string]any{"text": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func audioUpload(t *testing.T, c *testClient, data string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("audio", "clip.webm")
	require.NoError(t, err)
	_, err = part.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set(CSRFHeaderName, c.csrf)
	return c.do(req)
}

func TestTranscribe(t *testing.T) {
	t.Run("without recognizer", func(t *testing.T) {
		ts := newTestServer(t)
		c := ts.newClient(t)

		rec := audioUpload(t, c, "audio")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decodeJSON[TranscriptResponse](t, rec).Fallback)
	})

	t.Run("recognized", func(t *testing.T) {
		srv := fakeElevenLabs(t, "I have a headache")
		ts := newTestServer(t, withElevenLabs(t, srv))
		c := ts.newClient(t)

		rec := audioUpload(t, c, "audio")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "I have a headache", decodeJSON[TranscriptResponse](t, rec).Transcript)
	})

	t.Run("nothing heard", func(t *testing.T) {
		srv := fakeElevenLabs(t, "")
		ts := newTestServer(t, withElevenLabs(t, srv))
		c := ts.newClient(t)

		rec := audioUpload(t, c, "audio")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}
