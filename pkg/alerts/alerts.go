// Package alerts publishes collaborator-failure signals to a QStash-style
// HTTP endpoint so operators hear about model or lookup outages without the
// chat session noticing.
package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Config struct {
	URL     string        `split_words:"true"`
	Token   string        `split_words:"true"`
	Timeout time.Duration `split_words:"true" default:"10s"`
}

// Enabled reports whether an endpoint is configured at all. An empty URL
// means alerting is off, which is not an error.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.URL) != ""
}

type Publisher struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type event struct {
	Event      string         `json:"event"`
	OccurredAt time.Time      `json:"occurred_at"`
	Fields     map[string]any `json:"fields,omitempty"`
}

func NewPublisher(cfg Config) (*Publisher, error) {
	baseURL := strings.TrimSpace(cfg.URL)
	if baseURL == "" {
		return nil, errors.New("alerts url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Publisher{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      strings.TrimSpace(cfg.Token),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func MustNew(cfg Config) *Publisher {
	p, err := NewPublisher(cfg)
	if err != nil {
		panic(err)
	}
	return p
}

// Notify posts one failure event. Errors are returned for the caller to
// log; alert delivery must never block or fail the conversation.
func (p *Publisher) Notify(ctx context.Context, name string, fields map[string]any) error {
	body, err := json.Marshal(event{
		Event:      name,
		OccurredAt: time.Now().UTC(),
		Fields:     fields,
	})
	if err != nil {
		return fmt.Errorf("marshal alert event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("alert endpoint returned status=%d", resp.StatusCode)
	}
	return nil
}
