// internal/collab/flavor.go
package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// FlavorTimeout bounds one flavor-text request.
const FlavorTimeout = 2500 * time.Millisecond

// Flavorer restyles factual log lines through an HTTP text service.
//
// The service receives POST {"text": "..."} and answers {"text": "..."}.
// Any failure returns the input unchanged.
type Flavorer struct {
	Endpoint string
	Client   *http.Client
	Log      logrus.FieldLogger
}

// NewFlavorer returns a Flavorer posting to url with FlavorTimeout.
func NewFlavorer(url string, log logrus.FieldLogger) *Flavorer {
	return &Flavorer{
		Endpoint: url,
		Client:   &http.Client{Timeout: FlavorTimeout},
		Log:      log.WithField("collab", "flavor"),
	}
}

type textBody struct {
	Text string `json:"text"`
}

// Flavor returns the styled form of line, or line itself on any error.
func (f *Flavorer) Flavor(ctx context.Context, line string) string {
	if f == nil || f.Endpoint == "" {
		return line
	}
	ctx, cancel := context.WithTimeout(ctx, FlavorTimeout)
	defer cancel()

	styled, err := f.request(ctx, line)
	if err != nil {
		f.Log.WithError(err).Debug("flavor text unavailable, passing line through")
		return line
	}
	return styled
}

func (f *Flavorer) request(ctx context.Context, line string) (string, error) {
	body, err := json.Marshal(textBody{Text: line})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("flavor service: %s", resp.Status)
	}

	var out textBody
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode flavor reply: %w", err)
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", fmt.Errorf("flavor service returned empty text")
	}
	return out.Text, nil
}
