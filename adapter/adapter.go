// Package adapter publishes call completion notifications to downstream
// systems (an HTTP endpoint or a Redis channel).
//
// Notifications are sent after the unified result is final. They never
// change the result or the exit code of a call.
package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/pithecene-io/mangle/types"
)

// EventType is the type of every published event.
const EventType = "call_completed"

// Outcome values carried by an event.
const (
	OutcomeSuccess       = "success"
	OutcomeFailure       = "failure"
	OutcomeIndeterminate = "indeterminate"
)

// CallCompletedEvent is the payload published when a call finishes.
type CallCompletedEvent struct {
	ProtocolVersion string   `json:"protocol_version"`
	EventType       string   `json:"event_type"`
	Key             string   `json:"key"`
	Language        string   `json:"language"`
	File            string   `json:"file"`
	Outcome         string   `json:"outcome"`
	Errors          []string `json:"errors"`
	Warnings        []string `json:"warnings"`
	Timestamp       string   `json:"timestamp"` // RFC 3339, UTC
	DurationMs      int64    `json:"duration_ms"`
}

// NewEvent builds the completion event of one call. The payload itself is
// not included.
func NewEvent(meta *types.CallMeta, res *types.Result, finished time.Time, duration time.Duration) *CallCompletedEvent {
	outcome := OutcomeFailure
	switch {
	case !res.StatusKnown:
		outcome = OutcomeIndeterminate
	case res.Status:
		outcome = OutcomeSuccess
	}
	return &CallCompletedEvent{
		ProtocolVersion: types.ProtocolVersion,
		EventType:       EventType,
		Key:             meta.Key,
		Language:        meta.Language,
		File:            meta.File,
		Outcome:         outcome,
		Errors:          res.Errors,
		Warnings:        res.Warnings,
		Timestamp:       finished.UTC().Format(time.RFC3339),
		DurationMs:      duration.Milliseconds(),
	}
}

// Adapter publishes call completion events to a downstream system.
type Adapter interface {
	// Publish sends one event. Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *CallCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}

// Delivery holds the retry settings shared by every adapter.
type Delivery struct {
	// Timeout bounds each attempt. Zero selects the adapter default.
	Timeout time.Duration
	// Retries is the number of retries after the first attempt.
	Retries int
}

// Normalize applies defaultTimeout and rejects negative retries.
func (d Delivery) Normalize(defaultTimeout time.Duration) (Delivery, error) {
	if d.Retries < 0 {
		return d, fmt.Errorf("retries must be >= 0, got %d", d.Retries)
	}
	if d.Timeout <= 0 {
		d.Timeout = defaultTimeout
	}
	return d, nil
}

// Backoff is the delay before the first retry; it doubles on each retry.
var Backoff = 500 * time.Millisecond

// Retry runs attempt up to 1+retries times with exponential backoff between
// attempts. It stops early when permanent reports the error as final.
// A nil permanent treats every error as retriable.
func Retry(ctx context.Context, retries int, attempt func(context.Context) error, permanent func(error) bool) error {
	attempts := 1 + retries
	var lastErr error

	for i := range attempts {
		if i > 0 {
			delay := Backoff << uint(i-1)
			select {
			case <-ctx.Done():
				return fmt.Errorf("context canceled during backoff: %w", ctx.Err())
			case <-time.After(delay):
			}
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context canceled: %w", err)
		}

		lastErr = attempt(ctx)
		if lastErr == nil {
			return nil
		}
		if permanent != nil && permanent(lastErr) {
			return fmt.Errorf("non-retriable error: %w", lastErr)
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
