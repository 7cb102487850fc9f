package engine

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Params carries everything a candidate needs to build its plan.
type Params struct {
	Tools ToolPaths
	// Inputs are absolute paths of the files to archive.
	Inputs []string
	// Archive is the archive being written (archive) or read (extract).
	Archive string
	// Dir is the output directory for extraction and the working directory of every stage.
	Dir string
	// Password is the resolved password; empty means none.
	Password string
	// SplitSize is the volume size in bytes; zero means no split.
	SplitSize      uint64
	RecoveryRecord int
	Level          CompressionLevel
	Threads        int
	SingleThread   bool
	Quiet          bool
}

// Parallel reports whether parallel-capable tools may be considered.
func (p Params) Parallel() bool {
	return !p.SingleThread && p.Threads > 1
}

// Candidate is one tool that can handle a format/operation pair.
type Candidate struct {
	Tool Tool
	// ProbeArgs are appended to the tool path to check it is usable. Nil skips the probe.
	ProbeArgs []string
	// Parallel marks multi-threaded variants, never selected in single-thread mode.
	Parallel bool
	// Eligible further restricts when the candidate is considered. Nil means always.
	Eligible func(Params) bool
	Build    func(Params) Plan
}

func (c Candidate) eligible(p Params) bool {
	if c.Parallel && p.SingleThread {
		return false
	}
	if c.Eligible != nil {
		return c.Eligible(p)
	}
	if c.Parallel {
		return p.Parallel()
	}
	return true
}

// Selection is the plan chosen for a request together with the candidate that built it.
type Selection struct {
	Plan      Plan
	Tool      Tool
	Candidate int
}

type rowKey struct {
	format    ArchiveFormat
	operation Operation
}

// UnsupportedOperationError is returned when no candidates are registered for a format/operation pair.
type UnsupportedOperationError struct {
	Format    ArchiveFormat
	Operation Operation
	Available []string
}

func (e *UnsupportedOperationError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("unsupported %s of %q: no formats registered", e.Operation, e.Format)
	}
	return fmt.Sprintf("unsupported %s of %q (available: %v)", e.Operation, e.Format, e.Available)
}

func (e *UnsupportedOperationError) Unwrap() error { return ErrUnknownFormat }

// Registry maps each format/operation pair to its ordered tool candidates.
type Registry struct {
	mu     sync.RWMutex
	rows   map[rowKey][]Candidate
	logger *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		rows:   make(map[rowKey][]Candidate),
		logger: logger,
	}
}

// Register sets the candidates for format and operation, most preferred first.
func (r *Registry) Register(format ArchiveFormat, op Operation, candidates ...Candidate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[rowKey{format, op}] = candidates
}

// Candidates returns the registered candidates for format and operation.
func (r *Registry) Candidates(format ArchiveFormat, op Operation) ([]Candidate, error) {
	r.mu.RLock()
	candidates, ok := r.rows[rowKey{format, op}]
	available := r.available(op)
	r.mu.RUnlock()
	if !ok {
		return nil, &UnsupportedOperationError{Format: format, Operation: op, Available: available}
	}
	return candidates, nil
}

// Formats returns the formats with candidates for op.
func (r *Registry) Formats(op Operation) []ArchiveFormat {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := lo.Filter(lo.Keys(r.rows), func(k rowKey, _ int) bool { return k.operation == op })
	formats := lo.Map(keys, func(k rowKey, _ int) ArchiveFormat { return k.format })
	slices.Sort(formats)
	return formats
}

func (r *Registry) available(op Operation) []string {
	var names []string
	for k := range r.rows {
		if k.operation == op {
			names = append(names, k.format.String())
		}
	}
	slices.Sort(names)
	return names
}

// Select walks the candidates in order and builds the plan of the first eligible one whose
// probe succeeds. Candidates without a probe are accepted as they come.
func (r *Registry) Select(ctx context.Context, prober Prober, format ArchiveFormat, op Operation, params Params) (Selection, error) {
	candidates, err := r.Candidates(format, op)
	if err != nil {
		return Selection{}, err
	}

	for i, c := range candidates {
		if err := ctx.Err(); err != nil {
			return Selection{}, fmt.Errorf("context cancelled while selecting tool for %s: %w", format, err)
		}

		if !c.eligible(params) {
			r.logger.Debug("skipping candidate", zap.String("tool", string(c.Tool)), zap.Int("candidate", i))
			continue
		}

		if c.ProbeArgs != nil {
			argv := append([]string{params.Tools.Path(c.Tool)}, c.ProbeArgs...)
			if !prober.Probe(ctx, argv) {
				r.logger.Debug("probe failed", zap.String("tool", string(c.Tool)), zap.Strings("argv", argv))
				continue
			}
		}

		plan := c.Build(params)
		for j := range plan.Steps {
			plan.Steps[j].Secret = params.Password
		}

		r.logger.Debug("selected candidate", zap.String("tool", string(c.Tool)), zap.Int("candidate", i))
		return Selection{Plan: plan, Tool: c.Tool, Candidate: i}, nil
	}

	return Selection{}, fmt.Errorf("%w for %s %s", ErrNoUsableTool, op, format)
}
