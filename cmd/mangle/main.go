// Package main provides the mangle CLI entrypoint.
//
// Usage:
//
//	mangle <command> [options]
//
// Exit codes for `call`:
//   - 0: success
//   - 1: call failed
//   - 2: no definitive status (optional output, none produced)
//   - 3: invalid input
//   - 4: payload does not satisfy --schema
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mangle/cli/cmd"
	"github.com/pithecene-io/mangle/types"
)

// commit is set via ldflags at build time.
var commit string

func main() {
	app := &cli.App{
		Name:           "mangle",
		Usage:          "Call programs written in other languages over a JSON stdio protocol",
		Version:        types.Version,
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			cmd.CallCommand(),
			cmd.ResolveCommand(),
			cmd.VersionCommand(commit),
		},
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

// exitErrHandler preserves exit codes from cli.Exit().
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// cli.Exit("", N).Error() is "exit status N"; skip those.
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
