package invoker

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pithecene-io/mangle/types"
)

// inbound is a response envelope accepted for aggregation. Pointer fields
// are nil when the field was absent or of the wrong type.
type inbound struct {
	status   *bool
	isUnique *bool
	data     json.RawMessage
	errors   []string
}

// lineStats counts the non-blank stdout lines seen during collection.
type lineStats struct {
	read    int64
	ignored int64
	matched int64
}

// collect splits stdout into lines and keeps the envelopes addressed to key
// (or to nobody, for responder initialization failures), in order.
// Everything else is the child's own output and is ignored.
func collect(stdout []byte, key string) ([]*inbound, lineStats) {
	var matched []*inbound
	var stats lineStats

	for _, line := range bytes.Split(stdout, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		stats.read++

		env, ok := decodeLine(line, key)
		if !ok {
			stats.ignored++
			continue
		}
		stats.matched++
		matched = append(matched, env)
	}

	return matched, stats
}

// decodeLine parses one line as a response envelope addressed to key.
// Lines that are not JSON objects, lack a key field, or carry another key
// are rejected without error.
func decodeLine(line []byte, key string) (*inbound, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil || fields == nil {
		return nil, false
	}

	rawKey, ok := fields["key"]
	if !ok {
		return nil, false
	}
	if !isNull(rawKey) {
		var k string
		if err := json.Unmarshal(rawKey, &k); err != nil || k != key {
			return nil, false
		}
	}

	env := &inbound{
		status:   optionalBool(fields["request_status"]),
		isUnique: optionalBool(fields["isUnique"]),
		data:     fields["data"],
	}

	var list []any
	if json.Unmarshal(fields["errors"], &list) == nil {
		for _, item := range list {
			if msg, ok := item.(string); ok {
				env.errors = append(env.errors, msg)
			}
		}
	}

	return env, true
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func optionalBool(raw json.RawMessage) *bool {
	var b *bool
	if raw == nil || json.Unmarshal(raw, &b) != nil {
		return nil
	}
	return b
}

// aggregation holds the inputs of aggregate that come from the call.
type aggregation struct {
	isUnique       bool
	optionalOutput bool
	// trustCallee adopts the first envelope's isUnique echo for the
	// cardinality check instead of the caller's own setting.
	trustCallee bool
}

// aggregate folds matched envelopes into result. It reports whether a
// protocol error (cardinality or missing output) was recorded.
func aggregate(result *types.Result, matched []*inbound, agg aggregation) (protocolErr bool) {
	if len(matched) == 0 {
		if agg.optionalOutput {
			result.StatusKnown = false
			result.Warn(warnNoOptionalOutput)
			return false
		}
		result.Fail(errNoOutput)
		return true
	}

	failure := false
	for _, env := range matched {
		if env.status != nil && !*env.status {
			failure = true
		}
		result.Errors = append(result.Errors, env.errors...)
	}
	result.StatusKnown = true
	result.Status = !failure

	unique := agg.isUnique
	if echo := matched[0].isUnique; echo != nil && *echo != agg.isUnique {
		if agg.trustCallee {
			unique = *echo
		} else {
			result.Warn(fmt.Sprintf(warnUniqueEcho, *echo, agg.isUnique))
		}
	}
	result.IsUnique = unique

	if !unique {
		payloads := make([]json.RawMessage, len(matched))
		for i, env := range matched {
			payloads[i] = payload(env.data)
		}
		data, err := json.Marshal(payloads)
		if err != nil {
			result.Fail(fmt.Sprintf("Error: failed to encode aggregated data: %v", err))
			return false
		}
		result.Data = string(data)
		return false
	}

	if len(matched) != 1 {
		result.Status = false
		result.Data = ""
		result.Errors = append(result.Errors, fmt.Sprintf(errCardinality, len(matched)))
		return true
	}

	result.Data = string(payload(matched[0].data))
	return false
}

// payload returns a compact JSON value, null when absent or invalid.
func payload(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return json.RawMessage("null")
	}
	return types.BestEffortPayload(string(raw))
}
