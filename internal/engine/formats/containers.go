package formats

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xcompress/xcompress/internal/engine"
)

func registerContainers(registry *engine.Registry) {
	registry.Register(engine.FormatSevenZip, engine.OperationArchive, engine.Candidate{
		Tool:  engine.Tool7z,
		Build: sevenZipArchivePlan,
	})
	registry.Register(engine.FormatSevenZip, engine.OperationExtract, engine.Candidate{
		Tool:  engine.Tool7z,
		Build: sevenZipExtractPlan,
	})

	registry.Register(engine.FormatZip, engine.OperationArchive, engine.Candidate{
		Tool:  engine.Tool7z,
		Build: zipArchivePlan,
	})
	registry.Register(engine.FormatZip, engine.OperationExtract, engine.Candidate{
		Tool:  engine.ToolUnzip,
		Build: zipExtractPlan,
	})

	registry.Register(engine.FormatRar, engine.OperationArchive, engine.Candidate{
		Tool:  engine.ToolRar,
		Build: rarArchivePlan,
	})
	registry.Register(engine.FormatRar, engine.OperationExtract,
		engine.Candidate{
			Tool:      engine.ToolUnrar,
			ProbeArgs: []string{"-?"},
			Build: func(p engine.Params) engine.Plan {
				return rarExtractPlan(engine.ToolUnrar, p)
			},
		},
		engine.Candidate{
			Tool: engine.ToolRar,
			Build: func(p engine.Params) engine.Plan {
				return rarExtractPlan(engine.ToolRar, p)
			},
		},
	)
}

func sevenZipPassword(p engine.Params) []string {
	if p.Password == "" {
		return nil
	}
	return []string{"-mhe=on", "-p" + p.Password}
}

func sevenZipVolumes(p engine.Params) []string {
	if p.SplitSize == 0 {
		return nil
	}
	return []string{p.Archive + ".[0-9][0-9][0-9]"}
}

func sevenZipArchivePlan(p engine.Params) engine.Plan {
	args := []string{"a", "-t7z", "-aoa", "-mmt" + threads(p)}
	args = append(args, sevenZipLevels.flags(p.Level)...)
	args = append(args, sevenZipPassword(p)...)
	args = append(args, volumeFlag(p)...)
	args = append(args, p.Archive)
	args = append(args, p.Inputs...)

	plan := engine.Single(engine.Pipeline{
		Stages:        []engine.Stage{stage(p, engine.Tool7z, args...)},
		Dir:           p.Dir,
		DiscardStdout: p.Quiet,
	}, p.Archive)
	plan.OutputGlobs = sevenZipVolumes(p)
	return plan
}

func sevenZipExtractPlan(p engine.Params) engine.Plan {
	return engine.Single(engine.Pipeline{
		Stages: []engine.Stage{
			stage(p, engine.Tool7z, "x", "-aoa", "-mmt"+threads(p), "-o"+p.Dir, "-p"+p.Password, p.Archive),
		},
		Dir:           p.Dir,
		DiscardStdout: p.Quiet,
	})
}

// ZipSplitTemporary is where a split zip is built in full before zip re-splits it.
func ZipSplitTemporary(archive string) string {
	return filepath.Join(filepath.Dir(archive), stem(archive)+".tmp.zip")
}

func zip7zStage(p engine.Params, out string) engine.Stage {
	args := []string{"a", "-tzip", "-aoa", "-mmt" + threads(p)}
	args = append(args, zip7zLevels.flags(p.Level)...)
	if p.Password != "" {
		args = append(args, "-p"+p.Password)
	}
	args = append(args, out)
	args = append(args, p.Inputs...)
	return stage(p, engine.Tool7z, args...)
}

// zipArchivePlan builds the zip with 7z. When splitting, 7z writes a temporary archive that
// zip then re-splits into volumes of the final name.
func zipArchivePlan(p engine.Params) engine.Plan {
	if p.SplitSize == 0 {
		return engine.Single(engine.Pipeline{
			Stages:        []engine.Stage{zip7zStage(p, p.Archive)},
			Dir:           p.Dir,
			DiscardStdout: p.Quiet,
		}, p.Archive)
	}

	tmp := ZipSplitTemporary(p.Archive)

	args := []string{"-s", fmt.Sprintf("%dk", splitKiB(p.SplitSize))}
	args = append(args, zipLevels.flags(p.Level)...)
	if p.Password != "" {
		args = append(args, "--password", p.Password)
	}
	if p.Quiet {
		args = append(args, "-q")
	}
	args = append(args, tmp, "--out", p.Archive)

	return engine.Plan{
		Steps: []engine.Pipeline{
			{Stages: []engine.Stage{zip7zStage(p, tmp)}, Dir: p.Dir, DiscardStdout: p.Quiet},
			{Stages: []engine.Stage{stage(p, engine.ToolZip, args...)}, Dir: p.Dir},
		},
		Outputs:     []string{p.Archive},
		OutputGlobs: []string{filepath.Join(filepath.Dir(p.Archive), stem(p.Archive)+".z[0-9][0-9]")},
		Temporaries: []string{tmp},
	}
}

func zipExtractPlan(p engine.Params) engine.Plan {
	args := []string{"-P", p.Password}
	if p.Quiet {
		args = append(args, "-qq")
	}
	args = append(args, "-O", "UTF-8", "-o", p.Archive, "-d", p.Dir)
	return engine.Single(engine.Pipeline{
		Stages: []engine.Stage{stage(p, engine.ToolUnzip, args...)},
		Dir:    p.Dir,
	})
}

func rarVolumes(p engine.Params) []string {
	if p.SplitSize == 0 {
		return nil
	}
	base := strings.TrimSuffix(p.Archive, filepath.Ext(p.Archive))
	return []string{base + ".part*.rar"}
}

func rarArchivePlan(p engine.Params) engine.Plan {
	args := []string{"a", "-ep1", "-mt" + threads(p)}
	args = append(args, rarLevels.flags(p.Level)...)
	if p.Password != "" {
		args = append(args, "-hp"+p.Password)
	}
	if p.Quiet {
		args = append(args, "-idq")
	}
	args = append(args, volumeFlag(p)...)
	if p.RecoveryRecord > 0 {
		args = append(args, fmt.Sprintf("-rr%d", p.RecoveryRecord))
	}
	args = append(args, p.Archive)
	args = append(args, p.Inputs...)

	plan := engine.Single(engine.Pipeline{
		Stages: []engine.Stage{stage(p, engine.ToolRar, args...)},
		Dir:    p.Dir,
	}, p.Archive)
	plan.OutputGlobs = rarVolumes(p)
	return plan
}

func rarExtractPlan(tool engine.Tool, p engine.Params) engine.Plan {
	args := []string{"x", "-o+", "-mt" + threads(p)}
	if p.Password == "" {
		args = append(args, "-p-")
	} else {
		args = append(args, "-p"+p.Password)
	}
	if p.Quiet {
		args = append(args, "-idq")
	}
	args = append(args, p.Archive, p.Dir)
	return engine.Single(engine.Pipeline{
		Stages: []engine.Stage{stage(p, tool, args...)},
		Dir:    p.Dir,
	})
}
