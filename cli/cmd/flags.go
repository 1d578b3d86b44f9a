// Package cmd provides CLI commands for the mangle binary.
package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mangle/cli/config"
	"github.com/pithecene-io/mangle/cli/render"
)

// Exit codes for mangle call.
const (
	exitSuccess        = 0
	exitCallFailed     = 1
	exitIndeterminate  = 2
	exitInvalidInput   = 3
	exitSchemaMismatch = 4
)

// Shared flags.
var (
	// FormatFlag selects output format: json, table, yaml, msgpack.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml, msgpack",
	}

	// NoColorFlag disables colored output.
	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}

	// ConfigFlag points at a mangle.yaml file.
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to mangle.yaml config file",
		EnvVars: []string{"MANGLE_CONFIG"},
	}
)

// OutputFlags returns the flags shared by every command that renders output.
func OutputFlags() []cli.Flag {
	return []cli.Flag{
		FormatFlag,
		NoColorFlag,
	}
}

// loadConfig reads the --config file, or returns an empty config when the
// flag is unset.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		return &config.Config{}, nil
	}
	return config.Load(path)
}

// newRenderer builds the renderer for a command. The --format flag wins
// over the config file.
func newRenderer(c *cli.Context, cfg *config.Config) (*render.Renderer, error) {
	format := cfg.Format
	if c.IsSet("format") {
		format = c.String("format")
	}
	r, err := render.NewRenderer(c.App.Writer, format, c.Bool("no-color"))
	if err != nil {
		return nil, cli.Exit(err.Error(), exitInvalidInput)
	}
	return r, nil
}

// invalidInput reports a usage error with the invalid-input exit code.
func invalidInput(format string, args ...any) error {
	return cli.Exit(fmt.Sprintf(format, args...), exitInvalidInput)
}
