package formats

import (
	"github.com/samber/lo"

	"github.com/xcompress/xcompress/internal/engine"
)

// tarCodecs maps each tar-wrapped format to the stream format of its second stage.
var tarCodecs = map[engine.ArchiveFormat]engine.ArchiveFormat{
	engine.FormatTarCompress: engine.FormatCompress,
	engine.FormatTarGzip:     engine.FormatGzip,
	engine.FormatTarBzip2:    engine.FormatBzip2,
	engine.FormatTarLzip:     engine.FormatLzip,
	engine.FormatTarXz:       engine.FormatXz,
	engine.FormatTarLzma:     engine.FormatLzma,
	engine.FormatTarZstd:     engine.FormatZstd,
}

func registerTar(registry *engine.Registry) {
	registry.Register(engine.FormatTar, engine.OperationArchive, engine.Candidate{
		Tool:  engine.ToolTar,
		Build: tarArchivePlan,
	})
	registry.Register(engine.FormatTar, engine.OperationExtract, engine.Candidate{
		Tool:  engine.ToolTar,
		Build: tarExtractPlan,
	})

	for format, codecFormat := range tarCodecs {
		registry.Register(format, engine.OperationArchive, lo.Map(compressors(codecFormat, true), func(c codec, _ int) engine.Candidate {
			return c.candidate(func(p engine.Params) engine.Plan {
				return tarCompressPlan(c, p)
			})
		})...)

		registry.Register(format, engine.OperationExtract, lo.Map(decompressors(codecFormat), func(c codec, _ int) engine.Candidate {
			return c.candidate(func(p engine.Params) engine.Plan {
				return engine.Single(engine.Pipeline{
					Stages: []engine.Stage{c.stage(p, p.Archive), tarExtractStream(p)},
					Dir:    p.Dir,
				})
			})
		})...)
	}

	registry.Register(engine.FormatTar7z, engine.OperationArchive, engine.Candidate{
		Tool:  engine.Tool7z,
		Build: tar7zArchivePlan,
	})
	registry.Register(engine.FormatTar7z, engine.OperationExtract, engine.Candidate{
		Tool:  engine.Tool7z,
		Build: tar7zExtractPlan,
	})
}

func tarArchivePlan(p engine.Params) engine.Plan {
	args := []string{"-c"}
	if !p.Quiet {
		args = append(args, "-v")
	}
	args = append(args, "-f", p.Archive)
	args = append(args, tarInputs(p)...)
	return engine.Single(engine.Pipeline{
		Stages: []engine.Stage{stage(p, engine.ToolTar, args...)},
		Dir:    p.Dir,
	}, p.Archive)
}

func tarExtractPlan(p engine.Params) engine.Plan {
	args := []string{"-x", "-f", p.Archive, "-C", p.Dir}
	if !p.Quiet {
		args = append(args, "-v")
	}
	return engine.Single(engine.Pipeline{
		Stages: []engine.Stage{stage(p, engine.ToolTar, args...)},
		Dir:    p.Dir,
	})
}

func tarCompressPlan(c codec, p engine.Params) engine.Plan {
	pipeline := engine.Pipeline{
		Stages:       []engine.Stage{tarCreateStream(p), c.stage(p, "-")},
		Dir:          p.Dir,
		SuccessCodes: c.successCodes,
	}
	if !c.writesOutput {
		pipeline.Stdout = p.Archive
	}
	return engine.Single(pipeline, p.Archive)
}

func tar7zArchivePlan(p engine.Params) engine.Plan {
	args := []string{"a", "-t7z", "-aoa", "-mmt" + threads(p), "-si"}
	args = append(args, sevenZipLevels.flags(p.Level)...)
	args = append(args, sevenZipPassword(p)...)
	args = append(args, volumeFlag(p)...)
	args = append(args, p.Archive)

	plan := engine.Single(engine.Pipeline{
		Stages:        []engine.Stage{tarCreateStream(p), stage(p, engine.Tool7z, args...)},
		Dir:           p.Dir,
		DiscardStdout: p.Quiet,
	}, p.Archive)
	plan.OutputGlobs = sevenZipVolumes(p)
	return plan
}

func tar7zExtractPlan(p engine.Params) engine.Plan {
	return engine.Single(engine.Pipeline{
		Stages: []engine.Stage{
			stage(p, engine.Tool7z, "x", "-so", "-mmt"+threads(p), "-p"+p.Password, p.Archive),
			tarExtractStream(p),
		},
		Dir: p.Dir,
	})
}
