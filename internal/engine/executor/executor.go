// Package executor runs tool pipelines as operating system processes.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/xcompress/xcompress/internal/engine"
)

// Executor runs one- or two-stage pipelines and waits for them to finish.
type Executor struct {
	logger *zap.Logger
	fs     afero.Fs
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

type Option func(*Executor)

// WithStdio replaces the streams inherited by the tools. A nil stream is connected to the null device.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(e *Executor) {
		e.stdin = stdin
		e.stdout = stdout
		e.stderr = stderr
	}
}

// New returns an executor creating redirected output files on fs. Tools inherit the
// process standard streams unless WithStdio is given.
func New(logger *zap.Logger, fs afero.Fs, opts ...Option) *Executor {
	e := &Executor{
		logger: logger,
		fs:     fs,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run starts every stage, connecting them with a pipe, and returns the exit status of the
// last stage. A non-zero exit is reported through the status, not as an error.
func (e *Executor) Run(ctx context.Context, p engine.Pipeline) (engine.ExitStatus, error) {
	if n := len(p.Stages); n < 1 || n > 2 {
		return engine.ExitStatus{}, fmt.Errorf("pipeline must have one or two stages, got %d", n)
	}

	cmds := make([]*exec.Cmd, len(p.Stages))
	for i, s := range p.Stages {
		if len(s.Args) == 0 {
			return engine.ExitStatus{}, fmt.Errorf("stage %d (%s) has no command", i, s.Tool)
		}
		cmd := exec.CommandContext(ctx, s.Args[0], s.Args[1:]...)
		cmd.Dir = p.Dir
		cmd.Stderr = e.stderr
		cmds[i] = cmd
	}
	cmds[0].Stdin = e.stdin

	last := cmds[len(cmds)-1]
	switch {
	case p.Stdout != "":
		f, err := e.fs.Create(p.Stdout)
		if err != nil {
			return engine.ExitStatus{}, fmt.Errorf("failed to create output file %s: %w", p.Stdout, err)
		}
		defer f.Close()
		last.Stdout = f
	case !p.DiscardStdout:
		last.Stdout = e.stdout
	}

	e.logger.Debug("invoking pipeline",
		zap.Stringer("pipeline", p),
		zap.String("working_dir", p.Dir),
	)
	start := time.Now()

	var (
		status engine.ExitStatus
		err    error
	)
	if len(cmds) == 1 {
		status, err = e.runOne(p.Stages[0], cmds[0])
	} else {
		status, err = e.runTwo(p.Stages, cmds)
	}
	if err != nil {
		return engine.ExitStatus{}, err
	}

	e.logger.Debug("pipeline finished",
		zap.String("tool", string(p.Tool())),
		zap.Int("exit_code", status.Code),
		zap.Bool("signaled", status.Signaled),
		zap.Duration("duration", time.Since(start)),
	)

	return status, nil
}

func (e *Executor) runOne(s engine.Stage, cmd *exec.Cmd) (engine.ExitStatus, error) {
	if err := cmd.Start(); err != nil {
		return engine.ExitStatus{}, fmt.Errorf("%w %s: %w", engine.ErrToolSpawn, s.Tool, err)
	}
	return exitStatus(cmd.Wait())
}

func (e *Executor) runTwo(stages []engine.Stage, cmds []*exec.Cmd) (engine.ExitStatus, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return engine.ExitStatus{}, fmt.Errorf("failed to create pipe: %w", err)
	}
	cmds[0].Stdout = w
	cmds[1].Stdin = r

	if err := cmds[0].Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		return engine.ExitStatus{}, fmt.Errorf("%w %s: %w", engine.ErrToolSpawn, stages[0].Tool, err)
	}

	if err := cmds[1].Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		_ = cmds[0].Process.Kill()
		_ = cmds[0].Wait()
		return engine.ExitStatus{}, fmt.Errorf("%w %s: %w", engine.ErrToolSpawn, stages[1].Tool, err)
	}

	// The children hold their own copies; closing ours lets EOF and EPIPE propagate.
	_ = r.Close()
	_ = w.Close()

	lastErr := cmds[1].Wait()
	firstErr := cmds[0].Wait()

	if first, err := exitStatus(firstErr); err == nil && (first.Code != 0 || first.Signaled) {
		e.logger.Debug("first stage did not exit cleanly",
			zap.String("tool", string(stages[0].Tool)),
			zap.Int("exit_code", first.Code),
			zap.Bool("signaled", first.Signaled),
		)
	}

	return exitStatus(lastErr)
}

func exitStatus(err error) (engine.ExitStatus, error) {
	if err == nil {
		return engine.ExitStatus{Code: 0}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			return engine.ExitStatus{Code: code, Signaled: true}, nil
		}
		return engine.ExitStatus{Code: code}, nil
	}

	return engine.ExitStatus{}, fmt.Errorf("failed to wait for tool: %w", err)
}
