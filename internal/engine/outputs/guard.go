package outputs

import (
	"errors"
	"os"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/xcompress/xcompress/internal/engine"
)

// Guard removes the files a plan writes when the plan does not succeed, and its temporary
// files in every case. Removal is best effort: failures are logged and never returned.
type Guard struct {
	fs          afero.Fs
	logger      *zap.Logger
	outputs     []string
	globs       []string
	temporaries []string
}

func NewGuard(fs afero.Fs, logger *zap.Logger, plan engine.Plan) *Guard {
	return &Guard{
		fs:          fs,
		logger:      logger,
		outputs:     plan.Outputs,
		globs:       plan.OutputGlobs,
		temporaries: plan.Temporaries,
	}
}

// Finish applies the cleanup for the given outcome.
func (g *Guard) Finish(succeeded bool) {
	for _, path := range g.temporaries {
		g.remove(path)
	}

	if succeeded {
		return
	}

	for _, path := range g.outputs {
		g.remove(path)
	}

	for _, pattern := range g.globs {
		matches, err := afero.Glob(g.fs, pattern)
		if err != nil {
			g.logger.Warn("failed to match partial output", zap.String("pattern", pattern), zap.Error(err))
			continue
		}
		for _, path := range matches {
			g.remove(path)
		}
	}
}

func (g *Guard) remove(path string) {
	err := g.fs.Remove(path)
	switch {
	case err == nil:
		g.logger.Debug("removed output", zap.String("path", path))
	case errors.Is(err, os.ErrNotExist):
	default:
		g.logger.Warn("failed to remove output", zap.String("path", path), zap.Error(err))
	}
}
