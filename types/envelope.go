// Package types defines the wire envelopes and call result shared by the
// invoker (caller side) and the responder (callee side).
//
//nolint:revive // types is a common Go package naming convention
package types

import (
	"bytes"
	"encoding/json"
)

// nullPayload is the JSON null literal used wherever a payload is missing.
var nullPayload = json.RawMessage("null")

// RequestEnvelope is written once by the invoker to the child's stdin.
type RequestEnvelope struct {
	// Key is the correlation key of the call.
	Key string `json:"key"`
	// OptionalOutput allows the child to produce no response at all.
	OptionalOutput bool `json:"optionalOutput"`
	// IsUnique requires the child to emit at most one response.
	IsUnique bool `json:"isUnique"`
	// Data is the caller payload (any JSON value, possibly null).
	Data json.RawMessage `json:"data"`
}

// ResponseEnvelope is written 0..N times by the responder, one per line.
//
// Key and IsUnique are pointers because the uninitialized-responder
// envelope carries null for both.
type ResponseEnvelope struct {
	Key            *string         `json:"key"`
	RequestStatus  bool            `json:"request_status"`
	Data           json.RawMessage `json:"data"`
	OptionalOutput bool            `json:"optionalOutput"`
	IsUnique       *bool           `json:"isUnique"`
	Errors         []string        `json:"errors"`
	Warnings       []string        `json:"warnings"`
}

// Encode renders an envelope as one line of JSON terminated by '\n'.
// Payloads are compacted so an envelope never spans lines.
func Encode(envelope any) ([]byte, error) {
	line, err := json.Marshal(envelope)
	if err != nil {
		return nil, err
	}
	return append(line, '\n'), nil
}

// BestEffortPayload converts a caller-supplied JSON string into a payload.
// Empty or unparsable input yields JSON null; it never fails.
func BestEffortPayload(data string) json.RawMessage {
	if data == "" {
		return nullPayload
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(data)); err != nil {
		return nullPayload
	}
	return json.RawMessage(buf.Bytes())
}

// Bundle serializes any Go value to a JSON string suitable for a request or
// an emitted response. Values that cannot be marshaled bundle to "null".
func Bundle(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }
