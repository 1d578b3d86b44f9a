package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pithecene-io/mangle/lang"
)

// Config represents a mangle.yaml configuration file.
// All values are optional and act as defaults for mangle call flags.
// CLI flags always override config values.
type Config struct {
	Language              string            `yaml:"language"`
	Timeout               Duration          `yaml:"timeout"`
	TrustCalleeUniqueness bool              `yaml:"trust_callee_uniqueness"`
	Interpreters          map[string]string `yaml:"interpreters"`
	Schema                string            `yaml:"schema"`
	Format                string            `yaml:"format"`
	Adapter               AdapterConfig     `yaml:"adapter"`
}

// AdapterConfig holds call notification defaults from the config file.
type AdapterConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if parsed < 0 {
		return fmt.Errorf("invalid duration %q: must not be negative", s)
	}
	d.Duration = parsed
	return nil
}

// Resolver builds a command resolver from the interpreter overrides.
// Keys are language identifiers or aliases. Languages are reported in
// sorted order so errors are deterministic.
func (c *Config) Resolver() (*lang.Resolver, error) {
	if len(c.Interpreters) == 0 {
		return &lang.Resolver{}, nil
	}

	names := make([]string, 0, len(c.Interpreters))
	for name := range c.Interpreters {
		names = append(names, name)
	}
	sort.Strings(names)

	overrides := make(map[lang.Language]string, len(names))
	for _, name := range names {
		l, ok := lang.ParseLanguage(name)
		if !ok {
			return nil, fmt.Errorf("interpreters: unsupported language %q", name)
		}
		interpreter := strings.TrimSpace(c.Interpreters[name])
		if interpreter == "" {
			return nil, fmt.Errorf("interpreters: empty interpreter for %q", name)
		}
		if _, dup := overrides[l]; dup {
			return nil, fmt.Errorf("interpreters: %q duplicates an entry for %s", name, l)
		}
		overrides[l] = interpreter
	}
	return &lang.Resolver{Interpreters: overrides}, nil
}
