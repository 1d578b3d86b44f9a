package cmd

import (
	"runtime"
	"runtime/debug"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mangle/cli/config"
	"github.com/pithecene-io/mangle/types"
)

// VersionResponse is the response for the version command.
type VersionResponse struct {
	Version   string `json:"version"`
	Protocol  string `json:"protocol"`
	Commit    string `json:"commit"`
	GoVersion string `json:"go_version"`
}

// VersionCommand returns the version command. An empty commit falls back
// to the VCS revision recorded in the build info.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Flags: OutputFlags(),
		Action: func(c *cli.Context) error {
			r, err := newRenderer(c, &config.Config{})
			if err != nil {
				return err
			}
			return r.Render(VersionResponse{
				Version:   types.Version,
				Protocol:  types.ProtocolVersion,
				Commit:    resolveCommit(commit),
				GoVersion: runtime.Version(),
			})
		},
	}
}

func resolveCommit(commit string) string {
	if commit != "" {
		return commit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value
		}
	}
	return "unknown"
}
