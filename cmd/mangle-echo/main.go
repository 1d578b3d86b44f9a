// Package main provides mangle-echo, a reference callee.
//
// It reads one request from stdin and emits the request payload back,
// once or --repeat times. It is the smallest program that speaks the
// responder side of the protocol:
//
//	mangle call --lang go --file ./mangle-echo --data '{"a":1}'
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mangle/log"
	"github.com/pithecene-io/mangle/responder"
	"github.com/pithecene-io/mangle/types"
)

func main() {
	app := &cli.App{
		Name:    "mangle-echo",
		Usage:   "Echo the request payload back as response envelopes",
		Version: types.Version,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "repeat",
				Usage: "Number of emissions (0 emits nothing)",
				Value: 1,
			},
			&cli.StringFlag{
				Name:  "warn",
				Usage: "Warning attached to failing envelopes",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log diagnostics to stderr",
			},
		},
		Action: echoAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func echoAction(c *cli.Context) error {
	if c.Int("repeat") < 0 {
		return cli.Exit("--repeat must not be negative", 3)
	}

	logger := log.Nop()
	if c.Bool("verbose") {
		logger = log.NewLogger(&types.CallMeta{Language: "go", File: os.Args[0]})
	}
	defer func() { _ = logger.Sync() }()

	r := responder.NewStdio(responder.WithLogger(logger))
	if err := r.Init(); err != nil {
		return err
	}
	defer r.Cleanup()

	if msg := c.String("warn"); msg != "" {
		r.Warn(msg)
	}

	for i := 0; i < c.Int("repeat"); i++ {
		if err := r.Emit(r.RawData()); err != nil {
			return fmt.Errorf("emit %d: %w", i+1, err)
		}
	}

	logger.Info("echo complete", map[string]any{
		"key":    r.Key(),
		"repeat": c.Int("repeat"),
	})
	return nil
}
