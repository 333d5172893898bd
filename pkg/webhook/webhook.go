// Package webhook delivers completed agent output to caller-supplied
// callback URLs (Slack-style response_url endpoints). Delivery is a single
// attempt; callers log failures and move on.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

type Config struct {
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// Message is the callback payload. ResponseType is set on success deliveries
// ("in_channel") and omitted on error deliveries.
type Message struct {
	ResponseType string `json:"response_type,omitempty"`
	Text         string `json:"text"`
}

type Client struct {
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Post sends msg to callbackURL. Non-2xx statuses are errors; there is no
// retry.
func (c *Client) Post(ctx context.Context, callbackURL string, msg Message) error {
	if _, err := url.ParseRequestURI(callbackURL); err != nil {
		return fmt.Errorf("invalid callback url: %w", err)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal callback payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, callbackURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deliver callback: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("callback status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
