package cmd

import (
	"github.com/urfave/cli/v2"
)

// ResolveResponse is the response for the resolve command.
type ResolveResponse struct {
	Language string   `json:"language"`
	File     string   `json:"file"`
	Argv     []string `json:"argv"`
}

// ResolveCommand returns the resolve command.
// It prints the argument vector a call would launch without spawning it.
func ResolveCommand() *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Show the command a call would launch",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "lang",
				Aliases: []string{"l"},
				Usage:   "Target language or alias",
			},
			&cli.StringFlag{
				Name:     "file",
				Usage:    "Path to the target file",
				Required: true,
			},
			ConfigFlag,
		}, OutputFlags()...),
		Action: resolveAction,
	}
}

func resolveAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return invalidInput("%v", err)
	}
	r, err := newRenderer(c, cfg)
	if err != nil {
		return err
	}

	language := cfg.Language
	if c.IsSet("lang") {
		language = c.String("lang")
	}
	if language == "" {
		return invalidInput("a language is required (--lang or config language)")
	}

	resolver, err := cfg.Resolver()
	if err != nil {
		return invalidInput("invalid config: %v", err)
	}

	argv, err := resolver.Resolve(language, c.String("file"))
	if err != nil {
		return cli.Exit(err.Error(), exitCallFailed)
	}

	return r.Render(ResolveResponse{
		Language: language,
		File:     c.String("file"),
		Argv:     argv,
	})
}
