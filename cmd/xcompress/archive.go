package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/xcompress/xcompress/internal/engine"
)

var archiveCommand = &cli.Command{
	Name:      "a",
	Aliases:   []string{"archive"},
	Usage:     "Create an archive from files and directories",
	ArgsUsage: "<input-path>...",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:      "output",
			Aliases:   []string{"o"},
			Usage:     "Archive to create; its extension selects the format (default: <first input>.rar)",
			TakesFile: true,
		},
		&cli.BoolFlag{
			Name:    "best-compression",
			Aliases: []string{"b", "best"},
			Usage:   "Use the slowest, strongest compression",
		},
		&cli.BoolFlag{
			Name:    "fastest-compression",
			Aliases: []string{"f", "fast"},
			Usage:   "Use the fastest, weakest compression",
		},
		&cli.StringFlag{
			Name:    "split",
			Aliases: []string{"d"},
			Usage:   "Split into volumes of SIZE bytes (suffixes such as KB, MiB accepted; minimum 64KiB)",
		},
		&cli.IntFlag{
			Name:    "recovery-record",
			Aliases: []string{"r", "rr"},
			Usage:   "Recovery record size in percent, 1 to 100 (RAR only)",
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		logger := getLogger(ctx)

		req, err := archiveRequest(ctx, command)
		if err != nil {
			return err
		}

		r, err := newRunner(ctx, command)
		if err != nil {
			return fmt.Errorf("failed to create runner: %w", err)
		}

		result, err := r.Archive(ctx, req)
		if err != nil {
			return err
		}

		logger.Debug("archive finished",
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

func archiveRequest(ctx context.Context, command *cli.Command) (engine.ArchiveRequest, error) {
	s, err := resolveSettings(ctx, command)
	if err != nil {
		return engine.ArchiveRequest{}, err
	}

	inputs := command.Args().Slice()
	if len(inputs) == 0 {
		return engine.ArchiveRequest{}, fmt.Errorf("no input provided")
	}

	req := engine.ArchiveRequest{
		Inputs:       inputs,
		Output:       command.String("output"),
		Password:     s.password,
		Threads:      s.threads,
		SingleThread: s.singleThread,
		Quiet:        s.quiet,
	}

	best, fast := command.Bool("best-compression"), command.Bool("fastest-compression")
	switch {
	case best && fast:
		return engine.ArchiveRequest{}, fmt.Errorf("--best-compression and --fastest-compression are mutually exclusive")
	case best:
		req.Level = engine.LevelBest
	case fast:
		req.Level = engine.LevelFast
	}

	if command.IsSet("split") {
		size, err := humanize.ParseBytes(command.String("split"))
		if err != nil {
			return engine.ArchiveRequest{}, fmt.Errorf("invalid split size %q: %w", command.String("split"), err)
		}
		req.SplitSize = lo.ToPtr(size)
	}

	if command.IsSet("recovery-record") {
		req.RecoveryRecord = lo.ToPtr(int(command.Int("recovery-record")))
	}

	return req, nil
}
