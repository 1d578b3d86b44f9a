package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pithecene-io/mangle/lang"
)

// Load reads a YAML config file, expands ${VAR} references and validates
// the result.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("config file not found: %s", path)
	case err != nil:
		return nil, fmt.Errorf("cannot read config file %q: %w", path, err)
	}

	cfg, err := Parse([]byte(ExpandEnv(string(raw))))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates an already expanded YAML document.
func Parse(doc []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(doc, &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that can be checked without running a call.
func (c *Config) Validate() error {
	if c.Language != "" {
		if _, ok := lang.ParseLanguage(c.Language); !ok {
			return fmt.Errorf("language: unsupported language %q", c.Language)
		}
	}
	switch c.Adapter.Type {
	case "", "webhook", "redis":
	default:
		return fmt.Errorf("adapter.type: unknown adapter %q (must be webhook or redis)", c.Adapter.Type)
	}
	if c.Adapter.Type != "" && c.Adapter.URL == "" {
		return fmt.Errorf("adapter.url: required for %s adapter", c.Adapter.Type)
	}
	if c.Adapter.Retries != nil && *c.Adapter.Retries < 0 {
		return fmt.Errorf("adapter.retries: must be >= 0, got %d", *c.Adapter.Retries)
	}
	return nil
}
