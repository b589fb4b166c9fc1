package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Recognizer transcribes one recorded utterance through the ElevenLabs
// speech-to-text endpoint. It is one-shot: each call handles one clip.
type Recognizer struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewRecognizer returns a recognizer. An empty apiKey yields a recognizer
// that always reports ErrUnsupported, leaving the browser to listen.
func NewRecognizer(apiKey, baseURL string, timeout time.Duration, client *http.Client) *Recognizer {
	if baseURL == "" {
		baseURL = defaultSynthBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Recognizer{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Supported reports whether server-side recognition is available.
func (r *Recognizer) Supported() bool {
	return r.apiKey != ""
}

// Transcribe returns the text spoken in audio.
func (r *Recognizer) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if !r.Supported() {
		return "", ErrUnsupported
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("model_id", "scribe_v1"); err != nil {
		return "", err
	}
	if err := w.WriteField("language_code", "en"); err != nil {
		return "", err
	}
	if filename == "" {
		filename = "speech.webm"
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("failed to read audio: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/speech-to-text", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("xi-api-key", r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("speech-to-text request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("speech-to-text: unexpected status code: %d", resp.StatusCode)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode transcript: %w", err)
	}
	text := strings.TrimSpace(out.Text)
	if text == "" {
		return "", ErrNoTranscript
	}
	return text, nil
}
