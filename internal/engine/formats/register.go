// Package formats holds the tool candidate tables for every archive format.
package formats

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xcompress/xcompress/internal/engine"
)

// Register adds the archive and extract candidates of every format to the registry.
func Register(registry *engine.Registry) {
	registerTar(registry)
	registerStream(registry)
	registerContainers(registry)
}

// levelFlags holds the flags a tool takes for the best and fastest compression levels.
type levelFlags struct {
	best []string
	fast []string
}

func (l levelFlags) flags(level engine.CompressionLevel) []string {
	switch level {
	case engine.LevelBest:
		return l.best
	case engine.LevelFast:
		return l.fast
	default:
		return nil
	}
}

var (
	gzipLevels     = levelFlags{best: []string{"-9"}, fast: []string{"-1"}}
	pigzTarLevels  = levelFlags{best: []string{"-11"}, fast: []string{"-1"}}
	xzLevels       = levelFlags{best: []string{"-9", "-e"}, fast: []string{"-0"}}
	zstdLevels     = levelFlags{best: []string{"--ultra", "-22"}, fast: []string{"-1"}}
	sevenZipLevels = levelFlags{best: []string{"-m0=lzma2", "-mx", "-ms=on"}, fast: []string{"-m0=copy"}}
	zip7zLevels    = levelFlags{best: []string{"-mx"}, fast: []string{"-mx=0"}}
	zipLevels      = levelFlags{best: []string{"-9"}, fast: []string{"-0"}}
	rarLevels      = levelFlags{best: []string{"-ma5", "-m5", "-s"}, fast: []string{"-m0"}}
	noLevels       = levelFlags{}
)

var versionProbe = []string{"-V"}

func stage(p engine.Params, tool engine.Tool, args ...string) engine.Stage {
	return engine.Stage{Tool: tool, Args: append([]string{p.Tools.Path(tool)}, args...)}
}

func threads(p engine.Params) string {
	return fmt.Sprint(p.Threads)
}

// splitKiB converts a volume size in bytes to whole KiB, rounded to nearest.
func splitKiB(size uint64) uint64 {
	return (size + 512) / 1024
}

func volumeFlag(p engine.Params) []string {
	if p.SplitSize == 0 {
		return nil
	}
	return []string{fmt.Sprintf("-v%dk", splitKiB(p.SplitSize))}
}

// stem returns the file name of path without its last extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// tarInputs adds each input by its base name relative to its parent, so archives hold no
// leading directories.
func tarInputs(p engine.Params) []string {
	var args []string
	for _, in := range p.Inputs {
		args = append(args, "-C", filepath.Dir(in), filepath.Base(in))
	}
	return args
}

func tarCreateStream(p engine.Params) engine.Stage {
	return stage(p, engine.ToolTar, append([]string{"-c", "-f", "-"}, tarInputs(p)...)...)
}

func tarExtractStream(p engine.Params) engine.Stage {
	args := []string{"-x", "-f", "-", "-C", p.Dir}
	if !p.Quiet {
		args = append(args, "-v")
	}
	return stage(p, engine.ToolTar, args...)
}
