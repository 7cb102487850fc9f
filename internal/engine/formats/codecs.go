package formats

import (
	"github.com/xcompress/xcompress/internal/engine"
)

// codec is a stream compressor or decompressor that reads src ("-" for stdin).
type codec struct {
	tool      engine.Tool
	probe     []string
	parallel  bool
	eligible  func(engine.Params) bool
	args      func(p engine.Params, src string) []string
	levels    levelFlags
	quietFlag bool
	// writesOutput is set for tools that write the archive themselves via -o.
	writesOutput bool
	successCodes []int
}

func (c codec) stage(p engine.Params, src string) engine.Stage {
	args := c.args(p, src)
	if c.quietFlag && p.Quiet {
		args = append(args, "-q")
	}
	args = append(args, c.levels.flags(p.Level)...)
	return stage(p, c.tool, args...)
}

func (c codec) candidate(build func(engine.Params) engine.Plan) engine.Candidate {
	return engine.Candidate{
		Tool:      c.tool,
		ProbeArgs: c.probe,
		Parallel:  c.parallel,
		Eligible:  c.eligible,
		Build:     build,
	}
}

func fixed(args ...string) func(engine.Params, string) []string {
	return func(_ engine.Params, src string) []string {
		return append(append([]string{}, args...), src)
	}
}

// gzipParallel also prefers pigz at one thread when the best level is asked, for its extended range.
func gzipParallel(p engine.Params) bool {
	return !p.SingleThread && (p.Threads > 1 || p.Level == engine.LevelBest)
}

// compressors returns the ordered archive-side codecs of a stream format.
// tarred selects the flags used when the input is a tar stream.
func compressors(format engine.ArchiveFormat, tarred bool) []codec {
	switch format {
	case engine.FormatCompress:
		return []codec{
			{tool: engine.ToolCompress, args: fixed("-c"), levels: noLevels, successCodes: []int{0, 2}},
		}
	case engine.FormatGzip:
		pigzLevels := gzipLevels
		if tarred {
			pigzLevels = pigzTarLevels
		}
		return []codec{
			{
				tool: engine.ToolPigz, probe: versionProbe, parallel: true, eligible: gzipParallel,
				args: func(p engine.Params, src string) []string {
					return []string{"-c", "-p", threads(p), src}
				},
				levels: pigzLevels, quietFlag: true,
			},
			{tool: engine.ToolGzip, args: fixed("-c"), levels: gzipLevels, quietFlag: true},
		}
	case engine.FormatBzip2:
		return []codec{
			{
				tool: engine.ToolLbzip2, probe: versionProbe, parallel: true,
				args: func(p engine.Params, src string) []string {
					return []string{"-z", "-c", "-n", threads(p), src}
				},
				levels: gzipLevels, quietFlag: true,
			},
			{
				tool: engine.ToolPbzip2, probe: versionProbe, parallel: true,
				args: func(p engine.Params, src string) []string {
					return []string{"-z", "-c", "-p" + threads(p), src}
				},
				levels: gzipLevels, quietFlag: true,
			},
			{tool: engine.ToolBzip2, args: fixed("-z", "-c"), levels: gzipLevels, quietFlag: true},
		}
	case engine.FormatLzip:
		return []codec{
			{
				tool: engine.ToolPlzip, probe: versionProbe, parallel: true,
				args: func(p engine.Params, src string) []string {
					return []string{"-F", "-c", "-n", threads(p), src}
				},
				levels: gzipLevels, quietFlag: true,
			},
			{tool: engine.ToolLzip, args: fixed("-F", "-c"), levels: gzipLevels, quietFlag: true},
		}
	case engine.FormatXz:
		return []codec{
			{
				tool: engine.ToolPxz, probe: versionProbe, parallel: true,
				args: func(p engine.Params, src string) []string {
					return []string{"-z", "-c", "-T", threads(p), src}
				},
				levels: xzLevels, quietFlag: true,
			},
			{tool: engine.ToolXz, args: fixed("-z", "-c"), levels: xzLevels, quietFlag: true},
		}
	case engine.FormatLzma:
		return []codec{
			{
				tool: engine.ToolPxz, probe: versionProbe, parallel: true,
				args: func(p engine.Params, src string) []string {
					return []string{"-z", "-c", "-T", threads(p), "-F", "lzma", src}
				},
				levels: xzLevels, quietFlag: true,
			},
			{tool: engine.ToolLzma, args: fixed("-z", "-c"), levels: xzLevels, quietFlag: true},
		}
	case engine.FormatZstd:
		return []codec{
			{
				tool: engine.ToolPzstd, probe: versionProbe, parallel: true,
				args: func(p engine.Params, src string) []string {
					return []string{"-p", threads(p), src, "-o", p.Archive}
				},
				levels: zstdLevels, quietFlag: true, writesOutput: true,
			},
			{
				tool: engine.ToolZstd,
				args: func(p engine.Params, src string) []string {
					return []string{src, "-o", p.Archive}
				},
				levels: zstdLevels, quietFlag: true, writesOutput: true,
			},
		}
	}
	return nil
}

// decompressors returns the ordered extract-side codecs of a stream format.
func decompressors(format engine.ArchiveFormat) []codec {
	switch format {
	case engine.FormatCompress, engine.FormatGzip:
		return []codec{
			{
				tool: engine.ToolPigz, probe: versionProbe, parallel: true,
				args: func(p engine.Params, src string) []string {
					return []string{"-d", "-c", "-p", threads(p), src}
				},
			},
			{tool: engine.ToolGunzip, probe: versionProbe, args: fixed("-c")},
			{tool: engine.ToolGzip, args: fixed("-d", "-c")},
		}
	case engine.FormatBzip2:
		return []codec{
			{
				tool: engine.ToolLbzip2, probe: versionProbe, parallel: true,
				args: func(p engine.Params, src string) []string {
					return []string{"-d", "-c", "-n", threads(p), src}
				},
			},
			{
				tool: engine.ToolPbzip2, probe: versionProbe, parallel: true,
				args: func(p engine.Params, src string) []string {
					return []string{"-d", "-c", "-p" + threads(p), src}
				},
			},
			{tool: engine.ToolBunzip2, probe: versionProbe, args: fixed("-c")},
			{tool: engine.ToolBzip2, args: fixed("-d", "-c")},
		}
	case engine.FormatLzip:
		return []codec{
			{
				tool: engine.ToolPlzip, probe: versionProbe, parallel: true,
				args: func(p engine.Params, src string) []string {
					return []string{"-d", "-c", "-n", threads(p), src}
				},
			},
			{tool: engine.ToolLunzip, probe: versionProbe, args: fixed("-c")},
			{tool: engine.ToolLzip, args: fixed("-d", "-c")},
		}
	case engine.FormatXz:
		return []codec{
			{
				tool: engine.ToolPxz, probe: versionProbe, parallel: true,
				args: func(p engine.Params, src string) []string {
					return []string{"-d", "-c", "-T", threads(p), src}
				},
			},
			{tool: engine.ToolUnxz, probe: versionProbe, args: fixed("-c")},
			{tool: engine.ToolXz, args: fixed("-d", "-c")},
		}
	case engine.FormatLzma:
		return []codec{
			{
				tool: engine.ToolPxz, probe: versionProbe, parallel: true,
				args: func(p engine.Params, src string) []string {
					return []string{"-d", "-c", "-T", threads(p), "-F", "lzma", src}
				},
			},
			{tool: engine.ToolUnlzma, probe: versionProbe, args: fixed("-c")},
			{tool: engine.ToolLzma, args: fixed("-d", "-c")},
		}
	case engine.FormatZstd:
		return []codec{
			{
				tool: engine.ToolPzstd, probe: versionProbe, parallel: true,
				args: func(p engine.Params, src string) []string {
					return []string{"-d", "-c", "-p", threads(p), src}
				},
			},
			{tool: engine.ToolUnzstd, probe: versionProbe, args: fixed("-c")},
			{tool: engine.ToolZstd, args: fixed("-d", "-c")},
		}
	}
	return nil
}
