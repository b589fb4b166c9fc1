package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultAvatarBaseURL = "https://tavusapi.com"
	defaultReplicaID     = "default-replica"

	// PlaceholderAvatar is shown whenever no generated video is available.
	PlaceholderAvatar = "https://images.pexels.com/photos/4386467/pexels-photo-4386467.jpeg"
)

// Avatar requests talking-head videos from Tavus.
type Avatar struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// AvatarResult is what the page shows next to a spoken answer.
type AvatarResult struct {
	URL       string `json:"url"`
	Generated bool   `json:"generated"`
	Voice     Voice  `json:"voice"`
}

type videoRequest struct {
	ReplicaID     string `json:"replica_id"`
	Script        string `json:"script"`
	BackgroundURL string `json:"background_url"`
}

// NewAvatar returns an Avatar client. Without an apiKey every request
// returns the placeholder image.
func NewAvatar(apiKey, baseURL string, timeout time.Duration, client *http.Client, logger *zap.Logger) *Avatar {
	if baseURL == "" {
		baseURL = defaultAvatarBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Avatar{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), client: client, logger: logger}
}

// Video asks for a video reading script. Failures are logged and answered
// with the placeholder; they never surface as errors.
func (a *Avatar) Video(ctx context.Context, script string) AvatarResult {
	fallback := AvatarResult{URL: PlaceholderAvatar, Voice: AvatarVoice}
	if a.apiKey == "" || strings.TrimSpace(script) == "" {
		return fallback
	}

	url, err := a.request(ctx, script)
	if err != nil {
		a.logger.Warn("avatar video request failed", zap.Error(err))
		return fallback
	}
	if url == "" {
		return fallback
	}
	return AvatarResult{URL: url, Generated: true, Voice: AvatarVoice}
}

func (a *Avatar) request(ctx context.Context, script string) (string, error) {
	body, err := json.Marshal(videoRequest{
		ReplicaID: defaultReplicaID,
		Script:    script,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v2/videos", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var out struct {
		DownloadURL string `json:"download_url"`
		HostedURL   string `json:"hosted_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode video response: %w", err)
	}
	if out.DownloadURL != "" {
		return out.DownloadURL, nil
	}
	return out.HostedURL, nil
}
