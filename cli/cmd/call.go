package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mangle/adapter"
	"github.com/pithecene-io/mangle/cli/render"
	"github.com/pithecene-io/mangle/invoker"
	"github.com/pithecene-io/mangle/metrics"
	"github.com/pithecene-io/mangle/schema"
	"github.com/pithecene-io/mangle/types"
)

// CallResponse is the response for the call command.
type CallResponse struct {
	Key            string            `json:"key" yaml:"key"`
	StatusKnown    bool              `json:"status_known" yaml:"status_known"`
	Status         bool              `json:"status" yaml:"status"`
	Data           string            `json:"data" yaml:"data"`
	OptionalOutput bool              `json:"optionalOutput" yaml:"optionalOutput"`
	IsUnique       bool              `json:"isUnique" yaml:"isUnique"`
	Errors         []string          `json:"errors" yaml:"errors"`
	Warnings       []string          `json:"warnings" yaml:"warnings"`
	Stats          *metrics.Snapshot `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// CallCommand returns the call command.
func CallCommand() *cli.Command {
	return &cli.Command{
		Name:      "call",
		Usage:     "Call a program in another language and print its unified result",
		ArgsUsage: " ",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "lang",
				Aliases: []string{"l"},
				Usage:   "Target language or alias (python, js, ruby, c, cpp, csharp, exe, java, rust, go)",
			},
			&cli.StringFlag{
				Name:     "file",
				Usage:    "Path to the target file",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "data",
				Usage: "JSON payload, or - to read it from stdin",
				Value: "null",
			},
			&cli.BoolFlag{
				Name:  "unique",
				Usage: "Require exactly one response",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "optional-output",
				Usage: "Tolerate a target that produces no response",
				Value: true,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Abort the call after this duration (0 = no deadline)",
			},
			&cli.BoolFlag{
				Name:  "trust-callee-uniqueness",
				Usage: "Check cardinality against the callee's isUnique echo",
			},
			&cli.StringFlag{
				Name:  "schema",
				Usage: "JSON Schema file the successful payload must satisfy",
			},
			&cli.BoolFlag{
				Name:  "stats",
				Usage: "Include call metrics in the output",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log call transitions to stderr",
			},
			ConfigFlag,
		}, append(adapterFlags(), OutputFlags()...)...),
		Action: callAction,
	}
}

// callChoice is the merged flag and config input of one call.
type callChoice struct {
	request     invoker.Request
	timeout     time.Duration
	trustCallee bool
	schemaPath  string
}

func callAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return invalidInput("%v", err)
	}
	r, err := newRenderer(c, cfg)
	if err != nil {
		return err
	}
	resolver, err := cfg.Resolver()
	if err != nil {
		return invalidInput("invalid config: %v", err)
	}

	choice := callChoice{
		request: invoker.Request{
			IsUnique:       c.Bool("unique"),
			OptionalOutput: c.Bool("optional-output"),
			Language:       cfg.Language,
			File:           c.String("file"),
		},
		timeout:     cfg.Timeout.Duration,
		trustCallee: cfg.TrustCalleeUniqueness,
		schemaPath:  cfg.Schema,
	}
	if c.IsSet("lang") {
		choice.request.Language = c.String("lang")
	}
	if c.IsSet("timeout") {
		choice.timeout = c.Duration("timeout")
	}
	if c.IsSet("trust-callee-uniqueness") {
		choice.trustCallee = c.Bool("trust-callee-uniqueness")
	}
	if c.IsSet("schema") {
		choice.schemaPath = c.String("schema")
	}

	if choice.request.Language == "" {
		return invalidInput("a language is required (--lang or config language)")
	}
	if choice.timeout < 0 {
		return invalidInput("--timeout must not be negative")
	}

	choice.request.Data, err = readData(c.String("data"), c.App.Reader)
	if err != nil {
		return invalidInput("%v", err)
	}

	var schemaDoc []byte
	if choice.schemaPath != "" {
		schemaDoc, err = os.ReadFile(choice.schemaPath)
		if err != nil {
			return invalidInput("cannot read schema: %v", err)
		}
	}

	notifier, err := buildAdapter(adapterChoice(c, cfg.Adapter))
	if err != nil {
		return invalidInput("invalid adapter: %v", err)
	}
	if notifier != nil {
		defer func() { _ = notifier.Close() }()
	}

	collector := metrics.NewCollector(choice.request.Language, choice.request.File)
	invCfg := &invoker.Config{
		Resolver:              resolver,
		TrustCalleeUniqueness: choice.trustCallee,
		Collector:             collector,
	}
	if c.Bool("verbose") {
		invCfg.LogOutput = c.App.ErrWriter
	}

	ctx, cancel := callContext(choice.timeout)
	defer cancel()

	start := time.Now()
	inv := invoker.New(invCfg)
	if err := inv.Call(ctx, choice.request); err != nil {
		return fmt.Errorf("call failed: %w", err)
	}

	res := inv.Result()
	if notifier != nil {
		meta := &types.CallMeta{Key: inv.Key(), Language: choice.request.Language, File: choice.request.File}
		publish(c, notifier, adapter.NewEvent(meta, &res, time.Now(), time.Since(start)))
	}
	resp := newCallResponse(inv.Key(), &res)

	code := outcomeToExitCode(&res)
	if schemaDoc != nil && res.Succeeded() {
		if err := schema.Validate(schemaDoc, inv.DataIfSuccessful()); err != nil {
			var verr *schema.ValidationError
			if !errors.As(err, &verr) {
				return invalidInput("%v", err)
			}
			resp.Errors = append(resp.Errors, verr.Violations...)
			code = exitSchemaMismatch
		}
	}

	if c.Bool("stats") {
		snap := collector.Snapshot()
		resp.Stats = &snap
	}

	if err := renderCall(r, resp); err != nil {
		return err
	}
	if code != exitSuccess {
		return cli.Exit("", code)
	}
	return nil
}

// readData returns the payload argument, reading stdin for "-".
func readData(arg string, stdin io.Reader) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("cannot read data from stdin: %w", err)
	}
	return string(data), nil
}

// callContext cancels on SIGINT or SIGTERM, and after timeout when positive.
func callContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func newCallResponse(key string, res *types.Result) *CallResponse {
	return &CallResponse{
		Key:            key,
		StatusKnown:    res.StatusKnown,
		Status:         res.Status,
		Data:           res.Data,
		OptionalOutput: res.OptionalOutput,
		IsUnique:       res.IsUnique,
		Errors:         res.Errors,
		Warnings:       res.Warnings,
	}
}

// renderCall renders the response. The table format prints stats as a
// second table.
func renderCall(r *render.Renderer, resp *CallResponse) error {
	stats := resp.Stats
	if r.Format() == render.FormatTable && stats != nil {
		resp.Stats = nil
		if err := r.Render(resp); err != nil {
			return err
		}
		return r.Render(stats)
	}
	return r.Render(resp)
}

func outcomeToExitCode(res *types.Result) int {
	switch {
	case !res.StatusKnown:
		return exitIndeterminate
	case res.Status:
		return exitSuccess
	default:
		return exitCallFailed
	}
}
