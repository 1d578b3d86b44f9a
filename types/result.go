package types

import (
	"encoding/json"
	"errors"
)

// ErrNoData is returned by Result.Decode when the call did not succeed.
var ErrNoData = errors.New("result carries no successful data")

// Result is the unified result of one call, aggregated from every matching
// response envelope.
type Result struct {
	// StatusKnown reports whether a definitive status was determined.
	// False only when output was optional and none arrived.
	StatusKnown bool `json:"status_known" yaml:"status_known"`
	// Status is the overall success of the call.
	Status bool `json:"status" yaml:"status"`
	// Data is the JSON-serialized payload: a single value for unique calls,
	// a JSON array of every payload otherwise.
	Data string `json:"data" yaml:"data"`
	// OptionalOutput echoes the request setting.
	OptionalOutput bool `json:"optionalOutput" yaml:"optionalOutput"`
	// IsUnique echoes the request setting (or the callee's, when trusted).
	IsUnique bool `json:"isUnique" yaml:"isUnique"`
	// Errors accumulates error messages in order.
	Errors []string `json:"errors" yaml:"errors"`
	// Warnings accumulates advisory messages in order.
	Warnings []string `json:"warnings" yaml:"warnings"`
}

// NewResult returns an empty result echoing the request settings.
func NewResult(isUnique, optionalOutput bool) Result {
	return Result{
		OptionalOutput: optionalOutput,
		IsUnique:       isUnique,
		Errors:         []string{},
		Warnings:       []string{},
	}
}

// Succeeded reports whether the status is known and true.
func (r *Result) Succeeded() bool {
	return r.StatusKnown && r.Status
}

// Fail records a definitive failure with an error message.
func (r *Result) Fail(msg string) {
	r.StatusKnown = true
	r.Status = false
	r.Errors = append(r.Errors, msg)
}

// Warn appends an advisory message without touching the status.
func (r *Result) Warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Decode unmarshals the successful payload into v.
func (r *Result) Decode(v any) error {
	if !r.Succeeded() {
		return ErrNoData
	}
	return json.Unmarshal([]byte(r.Data), v)
}
