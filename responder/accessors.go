package responder

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
)

// ErrNoRequest is returned by Decode when no request payload was read.
var ErrNoRequest = errors.New("no request payload")

// The accessors below are best-effort: they never fail and return the zero
// value of their type when the payload is missing or of another type.
// Use Decode for strict handling.

// RawData returns the request payload as a JSON string ("" before Init).
func (r *Responder) RawData() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data
}

// IntOrZero returns a numeric payload truncated to int, or 0.
func (r *Responder) IntOrZero() int {
	n, ok := r.number()
	if !ok {
		return 0
	}
	if i, err := n.Int64(); err == nil {
		return int(i)
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) {
		return 0
	}
	// Saturate: converting an out-of-range float to int is undefined.
	switch {
	case f >= math.MaxInt:
		return math.MaxInt
	case f <= math.MinInt:
		return math.MinInt
	}
	return int(f)
}

// FloatOrZero returns a numeric payload as float64, or 0.
func (r *Responder) FloatOrZero() float64 {
	n, ok := r.number()
	if !ok {
		return 0
	}
	f, err := n.Float64()
	if err != nil {
		return 0
	}
	return f
}

// StringOrEmpty returns a string payload, or "".
func (r *Responder) StringOrEmpty() string {
	var s string
	if r.decodeQuiet(&s) {
		return s
	}
	return ""
}

// BoolOrFalse returns a boolean payload, or false.
func (r *Responder) BoolOrFalse() bool {
	var b bool
	if r.decodeQuiet(&b) {
		return b
	}
	return false
}

// Decode unmarshals the payload into v and reports any mismatch.
func (r *Responder) Decode(v any) error {
	data := r.RawData()
	if data == "" {
		return ErrNoRequest
	}
	return json.Unmarshal([]byte(data), v)
}

func (r *Responder) number() (json.Number, bool) {
	data := r.RawData()
	if data == "" {
		return "", false
	}
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", false
	}
	n, ok := v.(json.Number)
	return n, ok
}

// decodeQuiet decodes the payload into v, reporting success. Null payloads
// count as a mismatch so zero values come from the accessors, not from null.
func (r *Responder) decodeQuiet(v any) bool {
	data := r.RawData()
	if data == "" || data == "null" {
		return false
	}
	return json.Unmarshal([]byte(data), v) == nil
}
