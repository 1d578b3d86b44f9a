package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mangle/adapter"
	"github.com/pithecene-io/mangle/adapter/redis"
	"github.com/pithecene-io/mangle/adapter/webhook"
	"github.com/pithecene-io/mangle/cli/config"
)

// defaultAdapterRetries applies when neither flag nor config sets retries.
const defaultAdapterRetries = 3

// adapterFlags returns the call notification flags.
func adapterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "adapter",
			Usage: "Publish a call_completed event: webhook or redis",
		},
		&cli.StringFlag{
			Name:  "adapter-url",
			Usage: "Webhook endpoint or redis:// URL",
		},
		&cli.StringFlag{
			Name:  "adapter-channel",
			Usage: "Redis pub/sub channel",
		},
		&cli.DurationFlag{
			Name:  "adapter-timeout",
			Usage: "Per-attempt publish timeout",
		},
		&cli.IntFlag{
			Name:  "adapter-retries",
			Usage: "Publish retries after the first attempt",
			Value: defaultAdapterRetries,
		},
	}
}

// adapterChoice merges the adapter flags over the config file.
func adapterChoice(c *cli.Context, cfg config.AdapterConfig) config.AdapterConfig {
	if c.IsSet("adapter") {
		cfg.Type = c.String("adapter")
	}
	if c.IsSet("adapter-url") {
		cfg.URL = c.String("adapter-url")
	}
	if c.IsSet("adapter-channel") {
		cfg.Channel = c.String("adapter-channel")
	}
	if c.IsSet("adapter-timeout") {
		cfg.Timeout = config.Duration{Duration: c.Duration("adapter-timeout")}
	}
	if c.IsSet("adapter-retries") || cfg.Retries == nil {
		retries := c.Int("adapter-retries")
		cfg.Retries = &retries
	}
	return cfg
}

// buildAdapter returns nil when no adapter is configured.
func buildAdapter(cfg config.AdapterConfig) (adapter.Adapter, error) {
	delivery := adapter.Delivery{Timeout: cfg.Timeout.Duration, Retries: defaultAdapterRetries}
	if cfg.Retries != nil {
		delivery.Retries = *cfg.Retries
	}

	switch cfg.Type {
	case "":
		return nil, nil
	case "webhook":
		a, err := webhook.New(webhook.Config{
			URL:      cfg.URL,
			Headers:  cfg.Headers,
			Delivery: delivery,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	case "redis":
		a, err := redis.New(redis.Config{
			URL:      cfg.URL,
			Channel:  cfg.Channel,
			Delivery: delivery,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown adapter type %q (must be webhook or redis)", cfg.Type)
	}
}

// publish sends the event and reports failures on stderr. A failed
// notification never changes the outcome of the call.
func publish(c *cli.Context, a adapter.Adapter, event *adapter.CallCompletedEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := a.Publish(ctx, event); err != nil {
		fmt.Fprintf(c.App.ErrWriter, "warning: failed to publish call_completed event: %v\n", err)
	}
}
