// Package webhook posts call completion events to an HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pithecene-io/mangle/adapter"
	"github.com/pithecene-io/mangle/iox"
)

// DefaultTimeout is the default per-request timeout.
const DefaultTimeout = 10 * time.Second

// Config configures the webhook adapter.
type Config struct {
	// URL is the endpoint to POST to (required).
	URL string
	// Headers are set on each request after Content-Type.
	Headers map[string]string
	adapter.Delivery
}

// Adapter publishes events as JSON POST requests.
type Adapter struct {
	url      string
	headers  http.Header
	delivery adapter.Delivery
	client   *http.Client
}

// New creates a webhook adapter.
func New(cfg Config) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, errors.New("webhook adapter requires a URL")
	}
	delivery, err := cfg.Delivery.Normalize(DefaultTimeout)
	if err != nil {
		return nil, fmt.Errorf("webhook adapter: %w", err)
	}

	headers := http.Header{"Content-Type": {"application/json"}}
	for k, v := range cfg.Headers {
		headers.Set(k, v)
	}

	return &Adapter{
		url:      cfg.URL,
		headers:  headers,
		delivery: delivery,
		client:   &http.Client{Timeout: delivery.Timeout},
	}, nil
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Permanent reports whether the response is a 4xx, which is never retried.
func (e *StatusError) Permanent() bool {
	return e.Code >= 400 && e.Code < 500
}

// Publish posts the event, retrying 5xx responses and network errors.
func (a *Adapter) Publish(ctx context.Context, event *adapter.CallCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	err = adapter.Retry(ctx, a.delivery.Retries, func(ctx context.Context) error {
		return a.post(ctx, body)
	}, func(err error) bool {
		var statusErr *StatusError
		return errors.As(err, &statusErr) && statusErr.Permanent()
	})
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	return nil
}

func (a *Adapter) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header = a.headers.Clone()

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer iox.DiscardClose(resp.Body)
	// Drained so the connection can be reused between attempts.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

// Close releases idle connections.
func (a *Adapter) Close() error {
	a.client.CloseIdleConnections()
	return nil
}

var _ adapter.Adapter = (*Adapter)(nil)
