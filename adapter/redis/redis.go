// Package redis publishes call completion events to a Redis pub/sub channel.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pithecene-io/mangle/adapter"
)

// DefaultChannel is the default pub/sub channel name.
const DefaultChannel = "mangle:call_completed"

// DefaultTimeout is the default per-publish timeout.
const DefaultTimeout = 5 * time.Second

// Config configures the Redis adapter.
type Config struct {
	// URL is redis://[:password@]host:port[/db] (required).
	URL string
	// Channel defaults to DefaultChannel.
	Channel string
	adapter.Delivery
}

// Adapter publishes events with PUBLISH. The connection is opened lazily
// on the first publish.
type Adapter struct {
	channel  string
	delivery adapter.Delivery
	client   *goredis.Client
}

// New creates a Redis adapter.
func New(cfg Config) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis adapter requires a URL")
	}
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis adapter: invalid URL: %w", err)
	}
	delivery, err := cfg.Delivery.Normalize(DefaultTimeout)
	if err != nil {
		return nil, fmt.Errorf("redis adapter: %w", err)
	}

	channel := cfg.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	return &Adapter{
		channel:  channel,
		delivery: delivery,
		client:   goredis.NewClient(opts),
	}, nil
}

// Publish sends the event as JSON. Every failure is retried.
func (a *Adapter) Publish(ctx context.Context, event *adapter.CallCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis: marshal event: %w", err)
	}

	err = adapter.Retry(ctx, a.delivery.Retries, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, a.delivery.Timeout)
		defer cancel()
		return a.client.Publish(attemptCtx, a.channel, body).Err()
	}, nil)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}

// Close closes the client.
func (a *Adapter) Close() error {
	return a.client.Close()
}

var _ adapter.Adapter = (*Adapter)(nil)
