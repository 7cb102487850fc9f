package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"github.com/urfave/cli/v3"

	"github.com/xcompress/xcompress/internal/engine"
	"github.com/xcompress/xcompress/internal/runner"
)

var formatsCommand = &cli.Command{
	Name:  "formats",
	Usage: "List supported archive formats and the tools tried for each, in order",
	Action: func(ctx context.Context, command *cli.Command) error {
		registry := runner.BuildRegistry(getLogger(ctx).Named("builder"))
		return printFormats(command.Root().Writer, registry)
	},
}

func printFormats(w io.Writer, registry *engine.Registry) error {
	for _, format := range engine.Formats() {
		fmt.Fprintf(w, "%s (%s)\n", format, strings.Join(engine.Suffixes(format), ", "))
		for _, op := range []engine.Operation{engine.OperationArchive, engine.OperationExtract} {
			candidates, err := registry.Candidates(format, op)
			if err != nil {
				return err
			}
			tools := lo.Map(candidates, func(c engine.Candidate, _ int) string { return string(c.Tool) })
			fmt.Fprintf(w, "  %-8s %s\n", op.String()+":", strings.Join(lo.Uniq(tools), ", "))
		}
	}
	return nil
}
