// Package invoker implements the caller side of a call: it resolves the
// target, spawns it, sends the request envelope and aggregates every
// response addressed to it into one result.
package invoker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pithecene-io/mangle/iox"
	"github.com/pithecene-io/mangle/lang"
	"github.com/pithecene-io/mangle/log"
	"github.com/pithecene-io/mangle/metrics"
	"github.com/pithecene-io/mangle/types"
)

// Messages recorded in the result.
const (
	warnResolve          = "Warning: targeted file not found or can't be executed, consider checking file information and language dependencies."
	warnTargetScript     = "Warning: these kinds of errors result from an error in the targeted script."
	warnNoOptionalOutput = "Warning: output is optional and the targeted program produced no output."
	warnUniqueEcho       = "Warning: callee echoed isUnique=%v but the request asked for isUnique=%v."
	errNoOutput          = "Error: the responder might not be used, or not used correctly."
	errCardinality       = "Error: isUnique=true output count mismatch: expected 1, received %d."
)

// ErrAlreadyCalled is returned when an Invoker is reused.
var ErrAlreadyCalled = errors.New("invoker already called")

// State is the position of a call in its lifecycle.
type State int

// Call states. CommandFailed, SpawnFailed, TransportFailed, ExitFailed and
// Aggregated are terminal.
const (
	StateIdle State = iota
	StateKeyGenerated
	StateCommandResolved
	StateCommandFailed
	StateProcessSpawned
	StateSpawnFailed
	StateTransportFailed
	StateExitFailed
	StateOutputCollected
	StateAggregated
)

var stateNames = map[State]string{
	StateIdle:            "idle",
	StateKeyGenerated:    "key_generated",
	StateCommandResolved: "command_resolved",
	StateCommandFailed:   "command_failed",
	StateProcessSpawned:  "process_spawned",
	StateSpawnFailed:     "spawn_failed",
	StateTransportFailed: "transport_failed",
	StateExitFailed:      "exit_failed",
	StateOutputCollected: "output_collected",
	StateAggregated:      "aggregated",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	switch s {
	case StateCommandFailed, StateSpawnFailed, StateTransportFailed, StateExitFailed, StateAggregated:
		return true
	default:
		return false
	}
}

// Request describes one call.
type Request struct {
	// IsUnique requires exactly one response.
	IsUnique bool
	// OptionalOutput tolerates zero responses.
	OptionalOutput bool
	// Data is the JSON payload. Empty or invalid JSON is sent as null.
	Data string
	// Language is the target language identifier or alias.
	Language string
	// File is the path of the target.
	File string
}

// Config configures an Invoker. The zero value is usable.
type Config struct {
	// Resolver builds the argument vector. If nil, the default resolver is used.
	Resolver *lang.Resolver
	// ProcessFactory overrides process creation (for testing).
	// If nil, uses NewProcessManager.
	ProcessFactory ProcessFactory
	// TrustCalleeUniqueness checks cardinality against the callee's
	// isUnique echo instead of the request's own setting. The reference
	// protocol adopts the echo; the default here keeps the request's value
	// and records a warning when the echo differs.
	TrustCalleeUniqueness bool
	// LogOutput receives JSON logs for every state transition.
	// If nil, nothing is logged.
	LogOutput io.Writer
	// Collector records call metrics. If nil, no metrics are recorded.
	Collector *metrics.Collector
}

// Invoker owns one outgoing call. It is single-use.
type Invoker struct {
	config *Config

	mu     sync.Mutex
	called bool
	key    string
	state  State
	result types.Result
}

// New creates an invoker. A nil config uses defaults.
func New(cfg *Config) *Invoker {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Invoker{
		config: cfg,
		result: types.NewResult(true, true),
	}
}

// Key returns the correlation key, empty before Call.
func (i *Invoker) Key() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.key
}

// State returns the current call state.
func (i *Invoker) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// Result returns a copy of the unified result.
func (i *Invoker) Result() types.Result {
	i.mu.Lock()
	defer i.mu.Unlock()
	res := i.result
	res.Errors = append([]string{}, i.result.Errors...)
	res.Warnings = append([]string{}, i.result.Warnings...)
	return res
}

// DataIfSuccessful returns the payload if the status is known and true,
// and the empty string otherwise.
func (i *Invoker) DataIfSuccessful() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.result.Succeeded() {
		return ""
	}
	return i.result.Data
}

// Decode unmarshals the successful payload into v.
func (i *Invoker) Decode(v any) error {
	res := i.Result()
	return res.Decode(v)
}

// Call runs the call to completion. The returned error is non-nil only on
// reuse; every outcome of the call itself is recorded in Result.
func (i *Invoker) Call(ctx context.Context, req Request) error {
	i.mu.Lock()
	if i.called {
		i.mu.Unlock()
		return ErrAlreadyCalled
	}
	i.called = true
	i.mu.Unlock()

	c := &call{
		inv:       i,
		req:       req,
		collector: i.config.Collector,
		result:    types.NewResult(req.IsUnique, req.OptionalOutput),
	}
	c.run(ctx)

	i.mu.Lock()
	i.result = c.result
	i.mu.Unlock()

	switch {
	case !c.result.StatusKnown:
		c.collector.IncCallIndeterminate()
	case c.result.Status:
		c.collector.IncCallSucceeded()
	default:
		c.collector.IncCallFailed()
	}
	return nil
}

// call carries the working state of one Call.
type call struct {
	inv       *Invoker
	req       Request
	logger    *log.Logger
	collector *metrics.Collector
	result    types.Result
}

func (c *call) transition(s State, fields map[string]any) {
	c.inv.mu.Lock()
	c.inv.state = s
	c.inv.mu.Unlock()

	if fields == nil {
		fields = map[string]any{}
	}
	fields["state"] = s.String()
	if s.Terminal() && s != StateAggregated {
		c.logger.Warn("call transition", fields)
		return
	}
	c.logger.Debug("call transition", fields)
}

func (c *call) run(ctx context.Context) {
	cfg := c.inv.config
	key := NewKey()

	c.inv.mu.Lock()
	c.inv.key = key
	c.inv.mu.Unlock()

	c.logger = log.Nop()
	if cfg.LogOutput != nil {
		c.logger = log.NewLogger(&types.CallMeta{
			Key:      key,
			Language: c.req.Language,
			File:     c.req.File,
		}).WithOutput(cfg.LogOutput)
	}
	defer iox.DiscardErr(c.logger.Sync)

	c.collector.IncCallStarted()
	c.transition(StateKeyGenerated, nil)

	resolver := cfg.Resolver
	if resolver == nil {
		resolver = &lang.Resolver{}
	}
	argv, err := resolver.Resolve(c.req.Language, c.req.File)
	if err != nil {
		c.collector.IncResolveFailure()
		c.result.Warn(warnResolve)
		c.result.Fail("Error: " + err.Error())
		c.transition(StateCommandFailed, map[string]any{"error": err.Error()})
		return
	}
	c.transition(StateCommandResolved, map[string]any{"argv": argv})

	request, err := types.Encode(types.RequestEnvelope{
		Key:            key,
		OptionalOutput: c.req.OptionalOutput,
		IsUnique:       c.req.IsUnique,
		Data:           types.BestEffortPayload(c.req.Data),
	})
	if err != nil {
		c.collector.IncTransportFailure()
		c.result.Fail(fmt.Sprintf("Error: failed to encode request: %v", err))
		c.transition(StateTransportFailed, map[string]any{"error": err.Error()})
		return
	}

	var proc Process
	if cfg.ProcessFactory != nil {
		proc = cfg.ProcessFactory(argv)
	} else {
		proc = NewProcessManager(argv)
	}

	if err := proc.Start(ctx); err != nil {
		c.collector.IncSpawnFailure()
		c.result.Fail(fmt.Sprintf("Error: failed to start process: %v", err))
		c.transition(StateSpawnFailed, map[string]any{"error": err.Error()})
		return
	}
	c.transition(StateProcessSpawned, nil)

	// A child may exit without reading its input. The write error is then
	// only reported when the exit status carries no failure of its own.
	sendErr := proc.Send(request)

	res, err := proc.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil && (err != nil || res.ExitCode != 0) {
		c.collector.IncTransportFailure()
		c.result.Fail(fmt.Sprintf("Error: call canceled: %v", ctxErr))
		c.transition(StateTransportFailed, map[string]any{"error": ctxErr.Error()})
		return
	}
	if err != nil {
		c.collector.IncTransportFailure()
		c.result.Fail(fmt.Sprintf("Error: failed to wait for process: %v", err))
		c.transition(StateTransportFailed, map[string]any{"error": err.Error()})
		return
	}

	if res.ExitCode != 0 {
		c.collector.IncExitFailure()
		c.result.Fail(fmt.Sprintf("Error: process exited with code %d", res.ExitCode))
		if stderr := strings.TrimSpace(string(res.Stderr)); stderr != "" {
			c.result.Errors = append(c.result.Errors, "stderr: "+stderr)
		}
		c.result.Warn(warnTargetScript)
		c.transition(StateExitFailed, map[string]any{"exit_code": res.ExitCode})
		return
	}

	if sendErr != nil {
		c.collector.IncTransportFailure()
		c.result.Fail(fmt.Sprintf("Error: failed to write request: %v", sendErr))
		c.transition(StateTransportFailed, map[string]any{"error": sendErr.Error()})
		return
	}

	matched, stats := collect(res.Stdout, key)
	c.collector.AddLines(stats.read, stats.ignored, stats.matched)
	c.transition(StateOutputCollected, map[string]any{
		"lines":   stats.read,
		"ignored": stats.ignored,
		"matched": stats.matched,
	})

	if aggregate(&c.result, matched, aggregation{
		isUnique:       c.req.IsUnique,
		optionalOutput: c.req.OptionalOutput,
		trustCallee:    cfg.TrustCalleeUniqueness,
	}) {
		c.collector.IncProtocolError()
	}
	c.transition(StateAggregated, map[string]any{
		"status_known": c.result.StatusKnown,
		"status":       c.result.Status,
	})
}
