// Package config handles YAML config file loading for mangle call.
package config

import (
	"os"
	"regexp"
	"strings"
)

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnv replaces ${VAR} and ${VAR:-default} in input.
//
// A set, non-empty variable wins; otherwise the default applies, and an
// unset variable without default expands to the empty string.
func ExpandEnv(input string) string {
	matches := envVarPattern.FindAllStringSubmatchIndex(input, -1)
	if len(matches) == 0 {
		return input
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(input[last:m[0]])
		last = m[1]

		if value := os.Getenv(input[m[2]:m[3]]); value != "" {
			b.WriteString(value)
			continue
		}
		if m[4] >= 0 {
			b.WriteString(input[m[4]:m[5]])
		}
	}
	b.WriteString(input[last:])
	return b.String()
}
