// internal/collab/avatar.go
package collab

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AvatarTimeout bounds one avatar request.
const AvatarTimeout = 4 * time.Second

// avatarNamespace seeds placeholder IDs so the same prompt always maps to the same URL.
var avatarNamespace = uuid.MustParse("5f0c6a52-8d0e-4c62-9a57-4b1d3f5e9c21")

// Avatars resolves seat portraits through an HTTP image service.
//
// The service receives GET ?prompt=... and answers {"url": "..."}.
type Avatars struct {
	Endpoint string
	Client   *http.Client
	Log      logrus.FieldLogger
}

// NewAvatars returns an Avatars client for url with AvatarTimeout.
func NewAvatars(url string, log logrus.FieldLogger) *Avatars {
	return &Avatars{
		Endpoint: url,
		Client:   &http.Client{Timeout: AvatarTimeout},
		Log:      log.WithField("collab", "avatar"),
	}
}

// Placeholder returns the deterministic fallback URL for prompt.
func Placeholder(prompt string) string {
	return fmt.Sprintf("/avatars/%s.svg", uuid.NewSHA1(avatarNamespace, []byte(prompt)))
}

// URL returns an image URL for prompt, or Placeholder(prompt) on any failure.
func (a *Avatars) URL(ctx context.Context, prompt string) string {
	if a == nil || a.Endpoint == "" {
		return Placeholder(prompt)
	}
	ctx, cancel := context.WithTimeout(ctx, AvatarTimeout)
	defer cancel()

	u, err := a.request(ctx, prompt)
	if err != nil {
		a.Log.WithError(err).WithField("prompt", prompt).Warn("avatar unavailable, using placeholder")
		return Placeholder(prompt)
	}
	return u
}

func (a *Avatars) request(ctx context.Context, prompt string) (string, error) {
	endpoint, err := url.Parse(a.Endpoint)
	if err != nil {
		return "", err
	}
	q := endpoint.Query()
	q.Set("prompt", prompt)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := a.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("avatar service: %s", resp.Status)
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode avatar reply: %w", err)
	}
	if out.URL == "" {
		return "", fmt.Errorf("avatar service returned no url")
	}
	return out.URL, nil
}
