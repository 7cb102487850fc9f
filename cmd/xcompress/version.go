package main

import (
	"context"
	"fmt"
	"io"
	"runtime/debug"
	"slices"

	"github.com/samber/lo"
	"github.com/urfave/cli/v3"

	"github.com/xcompress/xcompress/internal/engine"
	"github.com/xcompress/xcompress/internal/runner"
)

// Build information populated at init() from debug.ReadBuildInfo().
var (
	Version   = "unknown"
	GoVersion = "unknown"
	Commit    = "unknown"
	BuildTime = "unknown"
	Modified  bool
)

func init() {
	parseBuildInfo()
}

func parseBuildInfo() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	Version = info.Main.Version
	GoVersion = info.GoVersion

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			Commit = setting.Value
		case "vcs.time":
			BuildTime = setting.Value
		case "vcs.modified":
			Modified = setting.Value == "true"
		}
	}
}

var versionCommand = &cli.Command{
	Name:  "version",
	Usage: "Print version information and the tool paths in effect",
	Action: func(ctx context.Context, command *cli.Command) error {
		w := command.Root().Writer
		printVersion(w)

		tools, err := runner.ResolveToolPaths(getConfig(ctx), toolOverrides(command))
		if err != nil {
			return fmt.Errorf("failed to resolve tool paths: %w", err)
		}
		printToolOverrides(w, tools)
		return nil
	},
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "version: %s\n", Version)
	fmt.Fprintf(w, "go: %s\n", GoVersion)
	if Commit != "unknown" {
		if Modified {
			fmt.Fprintf(w, "commit: %s (dirty)\n", Commit)
		} else {
			fmt.Fprintf(w, "commit: %s\n", Commit)
		}
	}
	if BuildTime != "unknown" {
		fmt.Fprintf(w, "built: %s\n", BuildTime)
	}
}

func printToolOverrides(w io.Writer, tools engine.ToolPaths) {
	overrides := tools.Overrides()
	if len(overrides) == 0 {
		return
	}

	fmt.Fprintln(w, "tools:")
	keys := lo.Keys(overrides)
	slices.Sort(keys)
	for _, tool := range keys {
		fmt.Fprintf(w, "  %s: %s\n", tool, overrides[tool])
	}
}
