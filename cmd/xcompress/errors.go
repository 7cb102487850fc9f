package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/xcompress/xcompress/internal/engine"
)

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%d validation error(s):", len(validationErrs)))
		for _, fe := range validationErrs {
			sb.WriteString(fmt.Sprintf(" %s: failed '%s' validation", fe.Namespace(), fe.Tag()))
			if fe.Param() != "" {
				sb.WriteString(fmt.Sprintf(" (param: %s)", fe.Param()))
			}
			sb.WriteString(";")
		}
		return errors.New(strings.TrimSuffix(sb.String(), ";"))
	}
	return err
}

// exitCode returns the exit status for err: the code of a tool or cli.Exit, 1 otherwise.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		return exitCoder.ExitCode()
	}
	return 1
}

// exitErrHandler reports err once. A tool that failed has already printed its own diagnostics,
// so only a debug entry is logged for it.
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	if err == nil {
		return
	}

	logger := tryLogger(ctx)

	var toolErr *engine.ExitError
	if errors.As(err, &toolErr) {
		if logger != nil {
			logger.Debug("tool failed", zap.Error(err), zap.Int("exit_code", toolErr.ExitCode()))
		}
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		// cli.Exit("", N) carries no message worth printing.
		if msg := exitCoder.Error(); msg == "" || msg == fmt.Sprintf("exit status %d", exitCoder.ExitCode()) {
			return
		}
	}

	err = formatValidationError(err)
	if logger != nil {
		logger.Error("failed to run application", zap.Error(err))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}
