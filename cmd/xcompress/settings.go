package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/samber/do/v2"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	v1 "github.com/xcompress/xcompress/apis/v1"
	"github.com/xcompress/xcompress/internal/engine"
	"github.com/xcompress/xcompress/internal/runner"
)

type configCtxKeyType struct{}

var configCtxKey = configCtxKeyType{}

func loadConfig(path string) (v1.Config, error) {
	if path == "" {
		return v1.Config{}, nil
	}
	cfg, err := runner.LoadConfig(afero.NewOsFs(), path)
	if err != nil {
		return v1.Config{}, formatValidationError(err)
	}
	return cfg, nil
}

func withConfig(ctx context.Context, cfg v1.Config) context.Context {
	return context.WithValue(ctx, configCtxKey, cfg)
}

func getConfig(ctx context.Context) v1.Config {
	cfg, _ := ctx.Value(configCtxKey).(v1.Config)
	return cfg
}

// settings are the options shared by archive and extract, merged from flags, config and defaults.
type settings struct {
	threads      int
	singleThread bool
	quiet        bool
	password     *string
}

func resolveSettings(ctx context.Context, command *cli.Command) (settings, error) {
	cfg := getConfig(ctx)

	s := settings{
		threads:      runtime.NumCPU(),
		singleThread: command.Bool("single-thread"),
		quiet:        command.Bool("quiet") || lo.FromPtr(cfg.Quiet),
	}

	if cfg.Threads != nil {
		s.threads = *cfg.Threads
	}
	if command.IsSet("threads") {
		s.threads = int(command.Int("threads"))
		if s.threads < 1 {
			return settings{}, fmt.Errorf("--threads must be at least 1, got %d", s.threads)
		}
	}
	if s.singleThread {
		s.threads = 1
	}

	if command.IsSet("password") {
		s.password = lo.ToPtr(command.String("password"))
	}

	return s, nil
}

func toolOverrides(command *cli.Command) map[engine.Tool]string {
	overrides := make(map[engine.Tool]string)
	for _, tool := range engine.AllTools {
		if name := toolPathFlag(tool); command.IsSet(name) {
			overrides[tool] = command.String(name)
		}
	}
	return overrides
}

func newRunner(ctx context.Context, command *cli.Command) (*runner.Runner, error) {
	tools, err := runner.ResolveToolPaths(getConfig(ctx), toolOverrides(command))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tool paths: %w", err)
	}

	container := runner.BuildContainer(getLogger(ctx), tools,
		runner.WithPrompter(newPasswordPrompter(isInteractive(ctx))),
	)

	return do.Invoke[*runner.Runner](container)
}
