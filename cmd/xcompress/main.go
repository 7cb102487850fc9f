package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xcompress/xcompress/internal/engine"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	var loggerDeferFunc func() error

	app := &cli.Command{
		Name:  "xcompress",
		Usage: "Archive and extract files with the best compression tools available",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log Level (debug, info, warn, error, fatal)",
				Action: func(ctx context.Context, command *cli.Command, s string) error {
					_, err := zapcore.ParseLevel(s)
					if err != nil {
						return fmt.Errorf("invalid log level %s: %w", s, err)
					}
					return nil
				},
			},
			&cli.StringFlag{
				Name:      "config",
				Usage:     "Configuration file with tool paths and defaults",
				Sources:   cli.EnvVars("XCOMPRESS_CONFIG"),
				TakesFile: true,
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Silence the tools and only log errors",
			},
			&cli.BoolFlag{
				Name:    "single-thread",
				Aliases: []string{"s"},
				Usage:   "Run tools single-threaded and never pick a parallel variant",
			},
			&cli.IntFlag{
				Name:    "threads",
				Aliases: []string{"t"},
				Usage:   "Number of threads tools may use (default: number of CPUs)",
			},
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Archive password; an empty value asks for it interactively",
				Sources: cli.EnvVars("XCOMPRESS_PASSWORD"),
			},
		}, toolPathFlags()...),
		Commands: []*cli.Command{
			archiveCommand,
			extractCommand,
			formatsCommand,
			versionCommand,
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			cfg, err := loadConfig(command.String("config"))
			if err != nil {
				return nil, err
			}

			quiet := command.Bool("quiet") || lo.FromPtr(cfg.Quiet)
			logger, _, err := createLogger(command.Bool("debug"), command.String("log-level"), quiet)
			if err != nil {
				return nil, err
			}

			logger.Debug("logger created", zap.String("log_level", command.String("log-level")))

			loggerDeferFunc = func() error {
				return logger.Sync()
			}

			ctx = withLogger(ctx, logger)
			ctx = withConfig(ctx, cfg)
			ctx = withInteractive(ctx, isInteractiveEnvironment())
			return ctx, nil
		},
		ExitErrHandler: exitErrHandler,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancelling kills the running tools; the cleanup guard then removes partial output.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)
	go func() {
		select {
		case <-sig:
			cancel()
		case <-ctx.Done():
		}
	}()

	defer func() {
		if loggerDeferFunc != nil {
			_ = loggerDeferFunc()
		}
	}()

	return exitCode(app.Run(ctx, args))
}

func toolPathFlag(tool engine.Tool) string {
	return string(tool) + "-path"
}

func toolPathFlags() []cli.Flag {
	return lo.Map(engine.AllTools, func(tool engine.Tool, _ int) cli.Flag {
		return &cli.StringFlag{
			Name:      toolPathFlag(tool),
			Usage:     fmt.Sprintf("Executable used for %s", tool),
			TakesFile: true,
			Category:  "tool paths",
		}
	})
}
