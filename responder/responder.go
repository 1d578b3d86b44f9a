// Package responder implements the callee side of the protocol.
//
// A callee process creates one Responder, calls Init once at startup to read
// its request from stdin, then calls Emit one or more times according to the
// uniqueness contract declared by the caller:
//
//	r := responder.NewStdio()
//	if err := r.Init(); err != nil {
//		os.Exit(1)
//	}
//	defer r.Cleanup()
//	_ = r.EmitValue(r.IntOrZero() * 2)
//
// The Responder is an explicit context object: pass it to the code that needs
// the request rather than reaching for package state.
package responder

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pithecene-io/mangle/iox"
	"github.com/pithecene-io/mangle/log"
	"github.com/pithecene-io/mangle/types"
)

// Protocol error messages written into response envelopes.
const (
	errUninitialized = "Error: responder isn't initialized."
	errOutOfBound    = "Error: outputs out of bound (isUnique: %v)."
)

// Responder holds the single request of a callee process and writes its
// response envelopes. Safe for concurrent use.
type Responder struct {
	mu     sync.Mutex
	in     io.Reader
	out    io.Writer
	logger *log.Logger

	key            string
	data           string
	optionalOutput bool
	isUnique       bool

	// uniqueState is the isUnique value recorded by the last emission;
	// uniqueStateSet marks that at least one emission happened.
	uniqueState    bool
	uniqueStateSet bool
	// initError marks that the uninitialized envelope was already written.
	initError bool

	errors   []string
	warnings []string
}

// Option configures a Responder.
type Option func(*Responder)

// WithLogger routes diagnostics to logger. Logs never go to the envelope
// writer.
func WithLogger(logger *log.Logger) Option {
	return func(r *Responder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Responder reading the request from in and writing
// envelopes to out.
func New(in io.Reader, out io.Writer, opts ...Option) *Responder {
	r := &Responder{
		in:             in,
		out:            out,
		logger:         log.Nop(),
		optionalOutput: true,
		isUnique:       true,
		errors:         []string{},
		warnings:       []string{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewStdio creates a Responder bound to the process's stdin and stdout.
func NewStdio(opts ...Option) *Responder {
	return New(os.Stdin, os.Stdout, opts...)
}

// Init reads the whole input stream and parses the request envelope.
//
// Missing or malformed fields fall back to defaults (optionalOutput=true,
// isUnique=true, empty key, empty data); only a read failure is returned.
// Calling Init again resets the state as if a new request arrived.
func (r *Responder) Init() error {
	raw, err := io.ReadAll(r.in)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.key = ""
	r.data = ""
	r.optionalOutput = true
	r.isUnique = true
	r.errors = []string{}
	r.warnings = []string{}
	r.initError = false
	r.uniqueState = false
	r.uniqueStateSet = false

	if err != nil {
		return fmt.Errorf("failed to read request: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		r.logger.Warn("request is not a JSON object", map[string]any{
			"error": err.Error(),
			"bytes": len(raw),
		})
		return nil
	}

	var key string
	if json.Unmarshal(fields["key"], &key) == nil {
		r.key = key
	}
	if data, ok := fields["data"]; ok {
		r.data = string(types.BestEffortPayload(string(data)))
	}
	var optional, unique *bool
	if json.Unmarshal(fields["optionalOutput"], &optional) == nil && optional != nil {
		r.optionalOutput = *optional
	}
	if json.Unmarshal(fields["isUnique"], &unique) == nil && unique != nil {
		r.isUnique = *unique
	}

	r.logger.Debug("request read", map[string]any{
		"key":            r.key,
		"optionalOutput": r.optionalOutput,
		"isUnique":       r.isUnique,
	})
	return nil
}

// Key returns the correlation key of the request.
func (r *Responder) Key() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.key
}

// IsUnique reports whether the caller expects at most one emission.
func (r *Responder) IsUnique() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isUnique
}

// OptionalOutput reports whether the caller tolerates no emission.
func (r *Responder) OptionalOutput() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.optionalOutput
}

// Emit writes one response envelope carrying data (a JSON string; invalid
// JSON is sent as null).
//
// Before a successful Init it writes a single null-key error envelope, once.
// When the request is unique, every emission after the first is written with
// request_status=false and an out-of-bound error. The returned error reports
// write failures only.
func (r *Responder) Emit(data string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.data == "" {
		if r.initError {
			return nil
		}
		r.errors = append(r.errors, errUninitialized)
		r.initError = true
		r.logger.Warn("emit before initialization", nil)
		return r.write(&types.ResponseEnvelope{
			RequestStatus:  false,
			Data:           json.RawMessage("null"),
			OptionalOutput: r.optionalOutput,
			Errors:         r.errors,
			Warnings:       r.warnings,
		})
	}

	envelope := &types.ResponseEnvelope{
		Key:            types.StringPtr(r.key),
		Data:           types.BestEffortPayload(data),
		OptionalOutput: r.optionalOutput,
		IsUnique:       types.BoolPtr(r.isUnique),
	}

	if !r.uniqueStateSet || !r.isUnique {
		envelope.RequestStatus = true
		envelope.Errors = []string{}
		envelope.Warnings = []string{}
	} else {
		r.errors = append(r.errors, fmt.Sprintf(errOutOfBound, r.uniqueState))
		envelope.RequestStatus = false
		envelope.Errors = r.errors
		envelope.Warnings = r.warnings
		r.logger.Warn("emission out of bound", map[string]any{"key": r.key})
	}

	r.uniqueState = r.isUnique
	r.uniqueStateSet = true

	return r.write(envelope)
}

// EmitValue bundles v as JSON and emits it.
func (r *Responder) EmitValue(v any) error {
	return r.Emit(types.Bundle(v))
}

// Warn attaches a warning to the next failing envelope.
func (r *Responder) Warn(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, msg)
}

// Cleanup clears accumulated errors and warnings. Emission state is kept.
func (r *Responder) Cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = []string{}
	r.warnings = []string{}
}

// write encodes envelope as one line and flushes it. Caller holds r.mu.
func (r *Responder) write(envelope *types.ResponseEnvelope) error {
	line, err := types.Encode(envelope)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	if _, err := r.out.Write(line); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return iox.Flush(r.out)
}
