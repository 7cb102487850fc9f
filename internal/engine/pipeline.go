package engine

import (
	"context"
	"slices"
	"strings"
)

// Stage is one external process of a pipeline.
type Stage struct {
	Tool Tool
	// Args is the full argv; Args[0] is the executable.
	Args []string
}

func (s Stage) String() string {
	return strings.Join(s.Args, " ")
}

// Pipeline is one or two processes; with two, the first stage's stdout feeds the second's stdin.
type Pipeline struct {
	Stages []Stage
	// Dir is the working directory of every stage.
	Dir string
	// Stdout, when set, is a file created to receive the last stage's standard output.
	Stdout string
	// DiscardStdout drops the last stage's standard output instead of inheriting it.
	DiscardStdout bool
	// SuccessCodes lists exit codes that keep the output. Empty means only 0.
	SuccessCodes []int
	// Secret is masked whenever the pipeline is printed.
	Secret string
}

// Tool returns the tool of the last stage, which is the one whose exit status is reported.
func (p Pipeline) Tool() Tool {
	if len(p.Stages) == 0 {
		return ""
	}
	return p.Stages[len(p.Stages)-1].Tool
}

// Succeeded reports whether status counts as success for this pipeline.
func (p Pipeline) Succeeded(status ExitStatus) bool {
	if status.Signaled {
		return false
	}
	if len(p.SuccessCodes) == 0 {
		return status.Code == 0
	}
	return slices.Contains(p.SuccessCodes, status.Code)
}

func (p Pipeline) String() string {
	parts := make([]string, 0, len(p.Stages))
	for _, s := range p.Stages {
		parts = append(parts, s.String())
	}
	out := strings.Join(parts, " | ")
	if p.Stdout != "" {
		out += " > " + p.Stdout
	}
	if p.Secret != "" {
		out = strings.ReplaceAll(out, p.Secret, "******")
	}
	return out
}

// Plan is the full work for one request: pipelines run in order until one fails.
type Plan struct {
	Steps []Pipeline
	// Outputs are removed when the plan does not succeed.
	Outputs []string
	// OutputGlobs match extra files (split volumes) removed when the plan does not succeed.
	OutputGlobs []string
	// Temporaries are removed once the plan finishes, whatever the outcome.
	Temporaries []string
}

// Single wraps one pipeline into a plan guarding output.
func Single(p Pipeline, outputs ...string) Plan {
	return Plan{Steps: []Pipeline{p}, Outputs: outputs}
}

// ExitStatus is the observed end state of a process.
type ExitStatus struct {
	Code     int
	Signaled bool
}

// ExitCode maps the status to a program exit code.
func (s ExitStatus) ExitCode() int {
	if s.Signaled {
		return ExitCodeAbnormal
	}
	return s.Code
}

// Prober checks whether a tool can be used by running a cheap self-check invocation.
type Prober interface {
	Probe(ctx context.Context, argv []string) bool
}

// Executor runs a pipeline to completion.
type Executor interface {
	Run(ctx context.Context, p Pipeline) (ExitStatus, error)
}
