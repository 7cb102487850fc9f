package executor

import (
	"context"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// Prober runs a tool with a self-check argument and reports whether it exited cleanly.
// Results are not cached: every call spawns the tool again.
type Prober struct {
	logger *zap.Logger
}

func NewProber(logger *zap.Logger) *Prober {
	return &Prober{logger: logger}
}

// Probe runs argv with stdout and stderr discarded. A tool that cannot be started counts
// as a failed probe.
func (p *Prober) Probe(ctx context.Context, argv []string) bool {
	if len(argv) == 0 {
		return false
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	start := time.Now()
	err := cmd.Run()
	p.logger.Debug("probed tool",
		zap.Strings("argv", argv),
		zap.Bool("ok", err == nil),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err),
	)

	return err == nil
}
