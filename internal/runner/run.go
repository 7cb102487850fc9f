package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/xcompress/xcompress/internal/engine"
	"github.com/xcompress/xcompress/internal/engine/formats"
	"github.com/xcompress/xcompress/internal/engine/outputs"
)

// ErrNoPrompter is returned when a password must be asked for but no prompter is configured.
var ErrNoPrompter = errors.New("password requested but no interactive prompt is available")

// PasswordPrompter asks the user for a password.
type PasswordPrompter interface {
	Prompt(ctx context.Context) (string, error)
}

// Result is the outcome of a request whose tools ran to completion.
type Result struct {
	Format engine.ArchiveFormat
	Tool   engine.Tool
	// ExitCode is the exit status of the last tool run.
	ExitCode int
}

// Runner validates archive and extract requests, selects a tool for them and runs it,
// removing partial output on failure.
type Runner struct {
	logger   *zap.Logger
	fs       afero.Fs
	tools    engine.ToolPaths
	registry *engine.Registry
	prober   engine.Prober
	executor engine.Executor
	prompter PasswordPrompter
	getwd    func() (string, error)
}

type Option func(*Runner)

// WithPrompter sets the prompter used when an empty password is given.
func WithPrompter(p PasswordPrompter) Option {
	return func(r *Runner) { r.prompter = p }
}

// WithWorkingDir fixes the directory used for default outputs and relative paths.
func WithWorkingDir(dir string) Option {
	return func(r *Runner) {
		r.getwd = func() (string, error) { return dir, nil }
	}
}

func New(logger *zap.Logger, fs afero.Fs, tools engine.ToolPaths, registry *engine.Registry, prober engine.Prober, executor engine.Executor, opts ...Option) *Runner {
	r := &Runner{
		logger:   logger,
		fs:       fs,
		tools:    tools,
		registry: registry,
		prober:   prober,
		executor: executor,
		getwd:    os.Getwd,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Archive creates the archive described by req. A tool that does not succeed is reported as
// an *engine.ExitError; nothing is left at the output path in that case.
func (r *Runner) Archive(ctx context.Context, req engine.ArchiveRequest) (Result, error) {
	logger := r.logger.With(zap.String("operation", engine.OperationArchive.String()))

	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	cwd, err := r.getwd()
	if err != nil {
		return Result{}, fmt.Errorf("failed to get working directory: %w", err)
	}

	paths := make([]string, len(req.Inputs))
	for i, in := range req.Inputs {
		paths[i] = absolute(cwd, in)
	}
	inputs, err := outputs.Locate(r.fs, paths)
	if err != nil {
		return Result{}, err
	}
	logger.Debug("inputs validated", zap.Strings("inputs", paths))

	output := req.Output
	if output == "" {
		output = filepath.Base(paths[0]) + ".rar"
	}
	output = absolute(cwd, output)

	format, err := engine.ResolveFormat(output)
	if err != nil {
		return Result{}, err
	}
	logger = logger.With(zap.Stringer("format", format), zap.String("output", output))
	logger.Debug("format resolved")

	if err := engine.CheckArchiveOptions(format, req, inputs); err != nil {
		return Result{}, err
	}
	logger.Debug("options checked")

	password, err := r.password(ctx, req.Password)
	if err != nil {
		return Result{}, err
	}

	if err := outputs.PrepareFile(r.fs, output); err != nil {
		return Result{}, err
	}
	logger.Debug("output prepared")

	params := r.params(req.Threads, req.SingleThread, req.Quiet, password)
	params.Inputs = paths
	params.Archive = output
	params.Dir = filepath.Dir(output)
	params.Level = req.Level
	if req.SplitSize != nil {
		params.SplitSize = *req.SplitSize
	}
	if req.RecoveryRecord != nil {
		params.RecoveryRecord = *req.RecoveryRecord
	}

	selection, err := r.registry.Select(ctx, r.prober, format, engine.OperationArchive, params)
	if err != nil {
		return Result{}, fmt.Errorf("failed to select tool: %w", err)
	}

	for _, tmp := range selection.Plan.Temporaries {
		if err := outputs.PrepareFile(r.fs, tmp); err != nil {
			return Result{}, err
		}
	}

	return r.execute(ctx, logger, format, selection)
}

// Extract unpacks the archive described by req into its output directory.
func (r *Runner) Extract(ctx context.Context, req engine.ExtractRequest) (Result, error) {
	logger := r.logger.With(zap.String("operation", engine.OperationExtract.String()))

	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	cwd, err := r.getwd()
	if err != nil {
		return Result{}, fmt.Errorf("failed to get working directory: %w", err)
	}

	input := absolute(cwd, req.Input)
	located, err := outputs.Locate(r.fs, []string{input})
	if err != nil {
		return Result{}, err
	}
	if located[0].IsDir {
		return Result{}, &engine.PathError{Path: input, Reason: "is a directory"}
	}

	dir := cwd
	if req.Output != "" {
		dir = absolute(cwd, req.Output)
	}

	format, err := engine.ResolveFormat(input)
	if err != nil {
		return Result{}, err
	}
	logger = logger.With(zap.Stringer("format", format), zap.String("input", input), zap.String("output", dir))
	logger.Debug("format resolved")

	if err := engine.CheckExtractOptions(format, req); err != nil {
		return Result{}, err
	}
	if err := outputs.CheckDirectory(r.fs, dir); err != nil {
		return Result{}, err
	}
	if format.SingleFile() {
		if err := outputs.CheckFileTarget(r.fs, formats.StreamTarget(input, dir)); err != nil {
			return Result{}, err
		}
	}
	logger.Debug("options checked")

	password, err := r.password(ctx, req.Password)
	if err != nil {
		return Result{}, err
	}

	if err := outputs.EnsureDirectory(r.fs, dir); err != nil {
		return Result{}, err
	}
	logger.Debug("output directory ensured")

	params := r.params(req.Threads, req.SingleThread, req.Quiet, password)
	params.Archive = input
	params.Dir = dir

	selection, err := r.registry.Select(ctx, r.prober, format, engine.OperationExtract, params)
	if err != nil {
		return Result{}, fmt.Errorf("failed to select tool: %w", err)
	}

	return r.execute(ctx, logger, format, selection)
}

func (r *Runner) params(threads int, singleThread, quiet bool, password string) engine.Params {
	if singleThread {
		threads = 1
	}
	return engine.Params{
		Tools:        r.tools,
		Password:     password,
		Threads:      threads,
		SingleThread: singleThread,
		Quiet:        quiet,
	}
}

func (r *Runner) password(ctx context.Context, requested *string) (string, error) {
	switch {
	case requested == nil:
		return "", nil
	case *requested != "":
		return *requested, nil
	case r.prompter == nil:
		return "", ErrNoPrompter
	}

	password, err := r.prompter.Prompt(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return password, nil
}

// execute runs every step of the selected plan under a cleanup guard. The first step that
// does not succeed ends the plan.
func (r *Runner) execute(ctx context.Context, logger *zap.Logger, format engine.ArchiveFormat, selection engine.Selection) (Result, error) {
	result := Result{Format: format, Tool: selection.Tool}

	succeeded := false
	guard := outputs.NewGuard(r.fs, logger.Named("guard"), selection.Plan)
	defer func() { guard.Finish(succeeded) }()

	for i, step := range selection.Plan.Steps {
		logger.Info("running tool",
			zap.String("tool", string(step.Tool())),
			zap.Int("candidate", selection.Candidate),
			zap.Int("step", i),
			zap.Stringer("pipeline", step),
		)

		status, err := r.executor.Run(ctx, step)
		if err != nil {
			result.ExitCode = engine.ExitCodeAbnormal
			return result, fmt.Errorf("failed to run %s: %w", step.Tool(), err)
		}

		result.Tool = step.Tool()
		result.ExitCode = status.ExitCode()
		if !step.Succeeded(status) {
			logger.Debug("tool failed", zap.Int("exit_code", status.Code), zap.Bool("signaled", status.Signaled))
			return result, &engine.ExitError{Tool: step.Tool(), Code: status.Code, Signaled: status.Signaled}
		}
	}

	succeeded = true
	logger.Debug("operation succeeded", zap.Int("exit_code", result.ExitCode))
	return result, nil
}

func absolute(cwd, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(cwd, path)
}
