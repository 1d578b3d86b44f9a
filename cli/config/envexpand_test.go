package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("MANGLE_A", "alice")
	t.Setenv("MANGLE_B", "bob")
	t.Setenv("MANGLE_EMPTY", "")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"set", "language: ${MANGLE_A}", "language: alice"},
		{"unset", "language: ${MANGLE_UNSET_12345}", "language: "},
		{"default when unset", "format: ${MANGLE_UNSET_12345:-json}", "format: json"},
		{"default ignored when set", "${MANGLE_A:-other}", "alice"},
		{"default when empty", "${MANGLE_EMPTY:-fallback}", "fallback"},
		{"multiple", "${MANGLE_A}:${MANGLE_B}", "alice:bob"},
		{"bare dollar untouched", "cost: $5 and $MANGLE_A", "cost: $5 and $MANGLE_A"},
		{"no vars", "timeout: 10s", "timeout: 10s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandEnv(tt.input))
		})
	}
}
