package engine

import (
	"fmt"
	"slices"
)

// Tool is the logical name of an external program.
type Tool string

const (
	ToolTar      Tool = "tar"
	ToolCompress Tool = "compress"
	ToolZip      Tool = "zip"
	ToolUnzip    Tool = "unzip"
	ToolGzip     Tool = "gzip"
	ToolGunzip   Tool = "gunzip"
	ToolPigz     Tool = "pigz"
	ToolBzip2    Tool = "bzip2"
	ToolBunzip2  Tool = "bunzip2"
	ToolLbzip2   Tool = "lbzip2"
	ToolPbzip2   Tool = "pbzip2"
	ToolLzip     Tool = "lzip"
	ToolLunzip   Tool = "lunzip"
	ToolPlzip    Tool = "plzip"
	ToolXz       Tool = "xz"
	ToolUnxz     Tool = "unxz"
	ToolPxz      Tool = "pxz"
	ToolLzma     Tool = "lzma"
	ToolUnlzma   Tool = "unlzma"
	Tool7z       Tool = "7z"
	ToolRar      Tool = "rar"
	ToolUnrar    Tool = "unrar"
	ToolZstd     Tool = "zstd"
	ToolUnzstd   Tool = "unzstd"
	ToolPzstd    Tool = "pzstd"
)

// AllTools lists every logical tool, in the order flags are presented.
var AllTools = []Tool{
	ToolCompress, ToolZip, ToolUnzip, ToolGzip, ToolGunzip, ToolPigz,
	ToolBzip2, ToolBunzip2, ToolLbzip2, ToolPbzip2,
	ToolLzip, ToolLunzip, ToolPlzip,
	ToolXz, ToolUnxz, ToolPxz, ToolLzma, ToolUnlzma,
	Tool7z, ToolTar, ToolRar, ToolUnrar,
	ToolZstd, ToolUnzstd, ToolPzstd,
}

// ParseTool returns the tool with the given logical name.
func ParseTool(name string) (Tool, bool) {
	t := Tool(name)
	return t, slices.Contains(AllTools, t)
}

// ToolPaths maps each logical tool to the executable that is run for it.
// The zero value resolves every tool to its own name.
type ToolPaths struct {
	paths map[Tool]string
}

// NewToolPaths returns paths with the given overrides applied over the defaults.
func NewToolPaths(overrides map[Tool]string) (ToolPaths, error) {
	paths := make(map[Tool]string, len(AllTools))
	for _, t := range AllTools {
		paths[t] = string(t)
	}

	for t, p := range overrides {
		if !slices.Contains(AllTools, t) {
			return ToolPaths{}, fmt.Errorf("unknown tool %q", t)
		}
		if p == "" {
			return ToolPaths{}, fmt.Errorf("empty path for tool %q", t)
		}
		paths[t] = p
	}

	return ToolPaths{paths: paths}, nil
}

// DefaultToolPaths resolves every tool by its own name through PATH.
func DefaultToolPaths() ToolPaths {
	return ToolPaths{}
}

// Path returns the executable configured for t.
func (p ToolPaths) Path(t Tool) string {
	if path, ok := p.paths[t]; ok {
		return path
	}
	return string(t)
}

// Overrides returns the tools whose path differs from the default.
func (p ToolPaths) Overrides() map[Tool]string {
	out := make(map[Tool]string)
	for t, path := range p.paths {
		if path != string(t) {
			out[t] = path
		}
	}
	return out
}
