package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/xcompress/xcompress/internal/engine"
)

var extractCommand = &cli.Command{
	Name:      "x",
	Aliases:   []string{"extract"},
	Usage:     "Extract an archive",
	ArgsUsage: "<input-path> [<output-path>]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:      "output",
			Aliases:   []string{"o"},
			Usage:     "Directory to extract into (default: current directory)",
			TakesFile: true,
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		logger := getLogger(ctx)

		req, err := extractRequest(ctx, command)
		if err != nil {
			return err
		}

		r, err := newRunner(ctx, command)
		if err != nil {
			return fmt.Errorf("failed to create runner: %w", err)
		}

		result, err := r.Extract(ctx, req)
		if err != nil {
			return err
		}

		logger.Debug("extract finished",
			zap.Stringer("format", result.Format),
			zap.String("tool", string(result.Tool)),
			zap.Int("exit_code", result.ExitCode),
		)

		if result.ExitCode != 0 {
			return cli.Exit("", result.ExitCode)
		}
		return nil
	},
}

func extractRequest(ctx context.Context, command *cli.Command) (engine.ExtractRequest, error) {
	s, err := resolveSettings(ctx, command)
	if err != nil {
		return engine.ExtractRequest{}, err
	}

	args := command.Args()
	if args.Len() == 0 {
		return engine.ExtractRequest{}, fmt.Errorf("no input provided")
	}
	if args.Len() > 2 {
		return engine.ExtractRequest{}, fmt.Errorf("expected an input and at most one output, got %d arguments", args.Len())
	}

	output, err := extractOutput(args.Get(1), command.String("output"))
	if err != nil {
		return engine.ExtractRequest{}, err
	}

	return engine.ExtractRequest{
		Input:        args.Get(0),
		Output:       output,
		Password:     s.password,
		Threads:      s.threads,
		SingleThread: s.singleThread,
		Quiet:        s.quiet,
	}, nil
}

// extractOutput merges the positional output with --output. Both may be given only if they agree.
func extractOutput(positional, flag string) (string, error) {
	switch {
	case positional == "":
		return flag, nil
	case flag == "" || flag == positional:
		return positional, nil
	default:
		return "", fmt.Errorf("conflicting outputs %q and %q", positional, flag)
	}
}
