// Package metrics provides per-call metrics collection.
//
// The Collector accumulates counters across one or more calls. It is a leaf
// package with no internal dependencies. All methods are nil-receiver safe so
// callers that do not care about metrics can pass a nil *Collector.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Call lifecycle
	CallsStarted       int64 `json:"calls_started" yaml:"calls_started"`
	CallsSucceeded     int64 `json:"calls_succeeded" yaml:"calls_succeeded"`
	CallsFailed        int64 `json:"calls_failed" yaml:"calls_failed"`
	CallsIndeterminate int64 `json:"calls_indeterminate" yaml:"calls_indeterminate"`

	// Failure stages
	ResolveFailures   int64 `json:"resolve_failures" yaml:"resolve_failures"`
	SpawnFailures     int64 `json:"spawn_failures" yaml:"spawn_failures"`
	TransportFailures int64 `json:"transport_failures" yaml:"transport_failures"`
	ExitFailures      int64 `json:"exit_failures" yaml:"exit_failures"`
	ProtocolErrors    int64 `json:"protocol_errors" yaml:"protocol_errors"`

	// Output stream
	LinesRead        int64 `json:"lines_read" yaml:"lines_read"`
	LinesIgnored     int64 `json:"lines_ignored" yaml:"lines_ignored"`
	EnvelopesMatched int64 `json:"envelopes_matched" yaml:"envelopes_matched"`

	// Dimensions (informational, set at construction)
	Language string `json:"language" yaml:"language"`
	File     string `json:"file" yaml:"file"`
}

// Collector accumulates call metrics.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	callsStarted       int64
	callsSucceeded     int64
	callsFailed        int64
	callsIndeterminate int64

	resolveFailures   int64
	spawnFailures     int64
	transportFailures int64
	exitFailures      int64
	protocolErrors    int64

	linesRead        int64
	linesIgnored     int64
	envelopesMatched int64

	language string
	file     string
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(language, file string) *Collector {
	return &Collector{
		language: language,
		file:     file,
	}
}

// add applies fn under the lock unless c is nil.
func (c *Collector) add(fn func()) {
	if c == nil {
		return
	}
	c.mu.Lock()
	fn()
	c.mu.Unlock()
}

// --- Call lifecycle ---

// IncCallStarted records a call start.
func (c *Collector) IncCallStarted() { c.add(func() { c.callsStarted++ }) }

// IncCallSucceeded records a call whose status is known and true.
func (c *Collector) IncCallSucceeded() { c.add(func() { c.callsSucceeded++ }) }

// IncCallFailed records a call whose status is known and false.
func (c *Collector) IncCallFailed() { c.add(func() { c.callsFailed++ }) }

// IncCallIndeterminate records a call with no definitive status.
func (c *Collector) IncCallIndeterminate() { c.add(func() { c.callsIndeterminate++ }) }

// --- Failure stages ---

// IncResolveFailure records a command resolution failure.
func (c *Collector) IncResolveFailure() { c.add(func() { c.resolveFailures++ }) }

// IncSpawnFailure records a process start failure.
func (c *Collector) IncSpawnFailure() { c.add(func() { c.spawnFailures++ }) }

// IncTransportFailure records a write, wait or cancellation failure.
func (c *Collector) IncTransportFailure() { c.add(func() { c.transportFailures++ }) }

// IncExitFailure records a non-zero process exit.
func (c *Collector) IncExitFailure() { c.add(func() { c.exitFailures++ }) }

// IncProtocolError records a cardinality or missing-output violation.
func (c *Collector) IncProtocolError() { c.add(func() { c.protocolErrors++ }) }

// --- Output stream ---

// AddLines records n non-blank stdout lines, of which ignored were discarded
// and matched were kept for aggregation.
func (c *Collector) AddLines(n, ignored, matched int64) {
	c.add(func() {
		c.linesRead += n
		c.linesIgnored += ignored
		c.envelopesMatched += matched
	})
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		CallsStarted:       c.callsStarted,
		CallsSucceeded:     c.callsSucceeded,
		CallsFailed:        c.callsFailed,
		CallsIndeterminate: c.callsIndeterminate,

		ResolveFailures:   c.resolveFailures,
		SpawnFailures:     c.spawnFailures,
		TransportFailures: c.transportFailures,
		ExitFailures:      c.exitFailures,
		ProtocolErrors:    c.protocolErrors,

		LinesRead:        c.linesRead,
		LinesIgnored:     c.linesIgnored,
		EnvelopesMatched: c.envelopesMatched,

		Language: c.language,
		File:     c.file,
	}
}
