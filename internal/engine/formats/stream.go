package formats

import (
	"path/filepath"

	"github.com/samber/lo"

	"github.com/xcompress/xcompress/internal/engine"
)

var streamFormats = []engine.ArchiveFormat{
	engine.FormatCompress,
	engine.FormatGzip,
	engine.FormatBzip2,
	engine.FormatLzip,
	engine.FormatXz,
	engine.FormatLzma,
	engine.FormatZstd,
}

func registerStream(registry *engine.Registry) {
	for _, format := range streamFormats {
		registry.Register(format, engine.OperationArchive, lo.Map(compressors(format, false), func(c codec, _ int) engine.Candidate {
			return c.candidate(func(p engine.Params) engine.Plan {
				return streamCompressPlan(c, p)
			})
		})...)

		registry.Register(format, engine.OperationExtract, lo.Map(decompressors(format), func(c codec, _ int) engine.Candidate {
			return c.candidate(func(p engine.Params) engine.Plan {
				return streamDecompressPlan(c, p)
			})
		})...)
	}
}

func streamCompressPlan(c codec, p engine.Params) engine.Plan {
	pipeline := engine.Pipeline{
		Stages:       []engine.Stage{c.stage(p, p.Inputs[0])},
		Dir:          p.Dir,
		SuccessCodes: c.successCodes,
	}
	if !c.writesOutput {
		pipeline.Stdout = p.Archive
	}
	return engine.Single(pipeline, p.Archive)
}

// StreamTarget is the file a single-file archive decompresses to inside dir.
func StreamTarget(archive, dir string) string {
	return filepath.Join(dir, stem(archive))
}

func streamDecompressPlan(c codec, p engine.Params) engine.Plan {
	target := StreamTarget(p.Archive, p.Dir)
	return engine.Single(engine.Pipeline{
		Stages: []engine.Stage{c.stage(p, p.Archive)},
		Dir:    p.Dir,
		Stdout: target,
	}, target)
}
