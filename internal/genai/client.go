// Package genai is a thin adapter over the Gemini generateContent REST API.
// Failures are classified into typed kinds; in particular quota exhaustion is
// distinguishable so callers can tell the user to try again later instead of
// showing a generic failure.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Typed error kinds surfaced by the adapter.
var (
	// ErrQuotaExceeded is returned on rate/usage-limit responses (429).
	ErrQuotaExceeded = errors.New("generative model quota exceeded")
	// ErrUnavailable covers transport failures and model-side 5xx responses.
	ErrUnavailable = errors.New("generative model unavailable")
)

// Config carries the API key and model name for a Client.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // defaults to the public endpoint when empty
}

// Client calls the Gemini generateContent endpoint.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Gemini client from config.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate sends the prompt to the model and returns the first candidate's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode model request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build model request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", fmt.Errorf("%w: model '%s'", ErrQuotaExceeded, c.model)
	case resp.StatusCode >= http.StatusInternalServerError:
		return "", fmt.Errorf("%w: status %d from model '%s'", ErrUnavailable, resp.StatusCode, c.model)
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("model request failed with status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: failed to decode model response: %v", ErrUnavailable, err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("model returned no candidates")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
