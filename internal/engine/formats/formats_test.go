package formats

import (
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xcompress/xcompress/internal/engine"
)

type fakeProber struct {
	available map[string]bool
	probed    []string
}

func newProber(available ...string) *fakeProber {
	return &fakeProber{available: lo.SliceToMap(available, func(name string) (string, bool) { return name, true })}
}

func (f *fakeProber) Probe(_ context.Context, argv []string) bool {
	f.probed = append(f.probed, argv[0])
	return f.available[argv[0]]
}

func newRegistry() *engine.Registry {
	r := engine.NewRegistry(zap.NewNop())
	Register(r)
	return r
}

func selectPlan(t *testing.T, prober engine.Prober, format engine.ArchiveFormat, op engine.Operation, p engine.Params) engine.Selection {
	t.Helper()
	sel, err := newRegistry().Select(t.Context(), prober, format, op, p)
	require.NoError(t, err)
	return sel
}

func argvs(p engine.Pipeline) [][]string {
	return lo.Map(p.Stages, func(s engine.Stage, _ int) []string { return s.Args })
}

func archiveParams(archive string, threads int) engine.Params {
	return engine.Params{
		Inputs:  []string{"/src/a.txt"},
		Archive: archive,
		Dir:     "/out",
		Threads: threads,
	}
}

func extractParams(archive string, threads int) engine.Params {
	return engine.Params{
		Archive: archive,
		Dir:     "/outdir",
		Threads: threads,
	}
}

func TestEveryFormatHasBothRows(t *testing.T) {
	r := newRegistry()
	for _, format := range engine.Formats() {
		for _, op := range []engine.Operation{engine.OperationArchive, engine.OperationExtract} {
			candidates, err := r.Candidates(format, op)
			require.NoError(t, err, "%s %s", op, format)
			require.NotEmpty(t, candidates)
			assert.Nil(t, candidates[len(candidates)-1].ProbeArgs, "last %s candidate of %s must not need a probe", op, format)
			assert.False(t, candidates[len(candidates)-1].Parallel)
		}
	}
}

func TestTarGzip_PigzAtFourThreads(t *testing.T) {
	prober := newProber("pigz")
	sel := selectPlan(t, prober, engine.FormatTarGzip, engine.OperationArchive, archiveParams("/out/out.tar.gz", 4))

	assert.Equal(t, engine.ToolPigz, sel.Tool)
	require.Len(t, sel.Plan.Steps, 1)
	step := sel.Plan.Steps[0]
	assert.Equal(t, [][]string{
		{"tar", "-c", "-f", "-", "-C", "/src", "a.txt"},
		{"pigz", "-c", "-p", "4", "-"},
	}, argvs(step))
	assert.Equal(t, "/out/out.tar.gz", step.Stdout)
	assert.Equal(t, "/out", step.Dir)
	assert.Equal(t, []string{"/out/out.tar.gz"}, sel.Plan.Outputs)
}

func TestSingleThread_NeverProbesParallelTools(t *testing.T) {
	all := lo.Map(engine.AllTools, func(tool engine.Tool, _ int) string { return string(tool) })

	for _, format := range engine.Formats() {
		for _, op := range []engine.Operation{engine.OperationArchive, engine.OperationExtract} {
			prober := newProber(all...)
			p := archiveParams("/out/a"+suffix(format), 1)
			p.SingleThread = true
			p.Level = engine.LevelBest
			if op == engine.OperationExtract {
				p = extractParams("/in/a"+suffix(format), 1)
				p.SingleThread = true
			}

			sel := selectPlan(t, prober, format, op, p)
			for _, probed := range prober.probed {
				assert.NotContains(t, []string{"pigz", "lbzip2", "pbzip2", "plzip", "pxz", "pzstd"}, probed, "%s %s", op, format)
			}
			for _, step := range sel.Plan.Steps {
				for _, s := range step.Stages {
					assert.NotContains(t, []engine.Tool{engine.ToolPigz, engine.ToolLbzip2, engine.ToolPbzip2, engine.ToolPlzip, engine.ToolPxz, engine.ToolPzstd}, s.Tool)
				}
			}
		}
	}
}

func TestGzip_BestPrefersPigzAtOneThread(t *testing.T) {
	t.Run("stream", func(t *testing.T) {
		p := archiveParams("/out/a.txt.gz", 1)
		p.Level = engine.LevelBest
		sel := selectPlan(t, newProber("pigz"), engine.FormatGzip, engine.OperationArchive, p)
		assert.Equal(t, [][]string{{"pigz", "-c", "-p", "1", "/src/a.txt", "-9"}}, argvs(sel.Plan.Steps[0]))
		assert.Equal(t, "/out/a.txt.gz", sel.Plan.Steps[0].Stdout)
	})

	t.Run("tar", func(t *testing.T) {
		p := archiveParams("/out/a.tgz", 1)
		p.Level = engine.LevelBest
		sel := selectPlan(t, newProber("pigz"), engine.FormatTarGzip, engine.OperationArchive, p)
		assert.Equal(t, []string{"pigz", "-c", "-p", "1", "-", "-11"}, sel.Plan.Steps[0].Stages[1].Args)
	})

	t.Run("default level at one thread uses gzip", func(t *testing.T) {
		prober := newProber("pigz")
		sel := selectPlan(t, prober, engine.FormatGzip, engine.OperationArchive, archiveParams("/out/a.txt.gz", 1))
		assert.Equal(t, engine.ToolGzip, sel.Tool)
		assert.Empty(t, prober.probed)
	})
}

func TestBzip2_ParallelFallbackOrder(t *testing.T) {
	prober := newProber()
	sel := selectPlan(t, prober, engine.FormatTarBzip2, engine.OperationArchive, archiveParams("/out/a.tar.bz2", 4))
	assert.Equal(t, []string{"lbzip2", "pbzip2"}, prober.probed)
	assert.Equal(t, []string{"bzip2", "-z", "-c", "-"}, sel.Plan.Steps[0].Stages[1].Args)

	sel = selectPlan(t, newProber("pbzip2"), engine.FormatTarBzip2, engine.OperationArchive, archiveParams("/out/a.tar.bz2", 4))
	assert.Equal(t, []string{"pbzip2", "-z", "-c", "-p4", "-"}, sel.Plan.Steps[0].Stages[1].Args)

	sel = selectPlan(t, newProber("lbzip2", "pbzip2"), engine.FormatBzip2, engine.OperationExtract, extractParams("/in/a.bz2", 4))
	assert.Equal(t, [][]string{{"lbzip2", "-d", "-c", "-n", "4", "/in/a.bz2"}}, argvs(sel.Plan.Steps[0]))
}

func TestLzma_UsesPxzWithFormatFlag(t *testing.T) {
	sel := selectPlan(t, newProber("pxz"), engine.FormatLzma, engine.OperationArchive, archiveParams("/out/a.txt.lzma", 2))
	assert.Equal(t, []string{"pxz", "-z", "-c", "-T", "2", "-F", "lzma", "/src/a.txt"}, sel.Plan.Steps[0].Stages[0].Args)

	sel = selectPlan(t, newProber(), engine.FormatLzma, engine.OperationArchive, archiveParams("/out/a.txt.lzma", 2))
	assert.Equal(t, []string{"lzma", "-z", "-c", "/src/a.txt"}, sel.Plan.Steps[0].Stages[0].Args)
}

func TestZipSplit_TwoPhases(t *testing.T) {
	p := archiveParams("/out/out.zip", 2)
	p.SplitSize = 100 * 1024
	sel := selectPlan(t, newProber(), engine.FormatZip, engine.OperationArchive, p)

	require.Len(t, sel.Plan.Steps, 2)
	assert.Equal(t, [][]string{{"7z", "a", "-tzip", "-aoa", "-mmt2", "/out/out.tmp.zip", "/src/a.txt"}}, argvs(sel.Plan.Steps[0]))
	assert.Equal(t, [][]string{{"zip", "-s", "100k", "/out/out.tmp.zip", "--out", "/out/out.zip"}}, argvs(sel.Plan.Steps[1]))
	assert.Equal(t, []string{"/out/out.zip"}, sel.Plan.Outputs)
	assert.Equal(t, []string{"/out/out.z[0-9][0-9]"}, sel.Plan.OutputGlobs)
	assert.Equal(t, []string{"/out/out.tmp.zip"}, sel.Plan.Temporaries)
	assert.Equal(t, "/out/out.tmp.zip", ZipSplitTemporary("/out/out.zip"))
}

func TestZip_PasswordAndLevel(t *testing.T) {
	p := archiveParams("/out/out.zip", 1)
	p.SplitSize = 65536
	p.Password = "pw"
	p.Level = engine.LevelFast
	p.Quiet = true
	sel := selectPlan(t, newProber(), engine.FormatZip, engine.OperationArchive, p)

	assert.Equal(t, []string{"7z", "a", "-tzip", "-aoa", "-mmt1", "-mx=0", "-ppw", "/out/out.tmp.zip", "/src/a.txt"}, sel.Plan.Steps[0].Stages[0].Args)
	assert.True(t, sel.Plan.Steps[0].DiscardStdout)
	assert.Equal(t, []string{"zip", "-s", "64k", "-0", "--password", "pw", "-q", "/out/out.tmp.zip", "--out", "/out/out.zip"}, sel.Plan.Steps[1].Stages[0].Args)
	assert.Equal(t, "pw", sel.Plan.Steps[1].Secret)
}

func TestRarExtract_FallsBackToRar(t *testing.T) {
	prober := newProber()
	sel := selectPlan(t, prober, engine.FormatRar, engine.OperationExtract, extractParams("/in/a.rar", 4))

	assert.Equal(t, []string{"unrar"}, prober.probed)
	assert.Equal(t, engine.ToolRar, sel.Tool)
	assert.Equal(t, [][]string{{"rar", "x", "-o+", "-mt4", "-p-", "/in/a.rar", "/outdir"}}, argvs(sel.Plan.Steps[0]))

	p := extractParams("/in/a.rar", 4)
	p.Password = "pw"
	p.Quiet = true
	sel = selectPlan(t, newProber("unrar"), engine.FormatRar, engine.OperationExtract, p)
	assert.Equal(t, [][]string{{"unrar", "x", "-o+", "-mt4", "-ppw", "-idq", "/in/a.rar", "/outdir"}}, argvs(sel.Plan.Steps[0]))
}

func TestRarArchive_Options(t *testing.T) {
	p := archiveParams("/out/a.rar", 3)
	p.Password = "pw"
	p.SplitSize = 1 << 20
	p.RecoveryRecord = 5
	p.Level = engine.LevelBest
	sel := selectPlan(t, newProber(), engine.FormatRar, engine.OperationArchive, p)

	assert.Equal(t, []string{"rar", "a", "-ep1", "-mt3", "-ma5", "-m5", "-s", "-hppw", "-v1024k", "-rr5", "/out/a.rar", "/src/a.txt"}, sel.Plan.Steps[0].Stages[0].Args)
	assert.Equal(t, []string{"/out/a.part*.rar"}, sel.Plan.OutputGlobs)
}

func TestSevenZip(t *testing.T) {
	t.Run("archive with password and volumes", func(t *testing.T) {
		p := archiveParams("/out/a.7z", 2)
		p.Password = "pw"
		p.SplitSize = 65536
		p.Level = engine.LevelBest
		sel := selectPlan(t, newProber(), engine.FormatSevenZip, engine.OperationArchive, p)
		assert.Equal(t, []string{"7z", "a", "-t7z", "-aoa", "-mmt2", "-m0=lzma2", "-mx", "-ms=on", "-mhe=on", "-ppw", "-v64k", "/out/a.7z", "/src/a.txt"}, sel.Plan.Steps[0].Stages[0].Args)
		assert.Equal(t, []string{"/out/a.7z.[0-9][0-9][0-9]"}, sel.Plan.OutputGlobs)
	})

	t.Run("extract always passes a password flag", func(t *testing.T) {
		sel := selectPlan(t, newProber(), engine.FormatSevenZip, engine.OperationExtract, extractParams("/in/a.7z", 2))
		assert.Equal(t, []string{"7z", "x", "-aoa", "-mmt2", "-o/outdir", "-p", "/in/a.7z"}, sel.Plan.Steps[0].Stages[0].Args)
	})

	t.Run("tar.7z reads the tar stream from stdin", func(t *testing.T) {
		p := archiveParams("/out/a.tar.7z", 2)
		p.Level = engine.LevelFast
		p.Quiet = true
		sel := selectPlan(t, newProber(), engine.FormatTar7z, engine.OperationArchive, p)
		assert.Equal(t, [][]string{
			{"tar", "-c", "-f", "-", "-C", "/src", "a.txt"},
			{"7z", "a", "-t7z", "-aoa", "-mmt2", "-si", "-m0=copy", "/out/a.tar.7z"},
		}, argvs(sel.Plan.Steps[0]))
		assert.True(t, sel.Plan.Steps[0].DiscardStdout)
		assert.Empty(t, sel.Plan.Steps[0].Stdout)
	})

	t.Run("tar.7z extract pipes into tar", func(t *testing.T) {
		sel := selectPlan(t, newProber(), engine.FormatTar7z, engine.OperationExtract, extractParams("/in/a.tar.7z.001", 2))
		assert.Equal(t, [][]string{
			{"7z", "x", "-so", "-mmt2", "-p", "/in/a.tar.7z.001"},
			{"tar", "-x", "-f", "-", "-C", "/outdir", "-v"},
		}, argvs(sel.Plan.Steps[0]))
	})
}

func TestLevelFlags(t *testing.T) {
	tests := []struct {
		format engine.ArchiveFormat
		level  engine.CompressionLevel
		tail   []string
	}{
		{engine.FormatXz, engine.LevelBest, []string{"-9", "-e"}},
		{engine.FormatXz, engine.LevelFast, []string{"-0"}},
		{engine.FormatLzma, engine.LevelBest, []string{"-9", "-e"}},
		{engine.FormatGzip, engine.LevelFast, []string{"-1"}},
		{engine.FormatGzip, engine.LevelBest, []string{"-9"}},
		{engine.FormatBzip2, engine.LevelBest, []string{"-9"}},
		{engine.FormatLzip, engine.LevelFast, []string{"-1"}},
		{engine.FormatZstd, engine.LevelBest, []string{"--ultra", "-22"}},
		{engine.FormatZstd, engine.LevelFast, []string{"-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.format.String()+"/"+tt.level.String(), func(t *testing.T) {
			p := archiveParams("/out/a.txt"+suffix(tt.format), 1)
			p.SingleThread = true
			p.Level = tt.level
			sel := selectPlan(t, newProber(), tt.format, engine.OperationArchive, p)
			args := sel.Plan.Steps[0].Stages[0].Args
			assert.Equal(t, tt.tail, args[len(args)-len(tt.tail):])
		})
	}

	p := archiveParams("/out/a.rar", 1)
	p.Level = engine.LevelFast
	sel := selectPlan(t, newProber(), engine.FormatRar, engine.OperationArchive, p)
	assert.Contains(t, sel.Plan.Steps[0].Stages[0].Args, "-m0")

	sel = selectPlan(t, newProber(), engine.FormatTar, engine.OperationArchive, archiveParams("/out/a.tar", 1))
	assert.Equal(t, []string{"tar", "-c", "-v", "-f", "/out/a.tar", "-C", "/src", "a.txt"}, sel.Plan.Steps[0].Stages[0].Args)
}

func TestZstd_WritesItsOwnOutput(t *testing.T) {
	sel := selectPlan(t, newProber(), engine.FormatTarZstd, engine.OperationArchive, archiveParams("/out/a.tar.zst", 1))
	step := sel.Plan.Steps[0]
	assert.Equal(t, []string{"zstd", "-", "-o", "/out/a.tar.zst"}, step.Stages[1].Args)
	assert.Empty(t, step.Stdout)
	assert.Equal(t, []string{"/out/a.tar.zst"}, sel.Plan.Outputs)

	sel = selectPlan(t, newProber("pzstd"), engine.FormatZstd, engine.OperationArchive, archiveParams("/out/a.txt.zst", 4))
	assert.Equal(t, []string{"pzstd", "-p", "4", "/src/a.txt", "-o", "/out/a.txt.zst"}, sel.Plan.Steps[0].Stages[0].Args)
}

func TestCompress_ExitTwoKeepsOutput(t *testing.T) {
	sel := selectPlan(t, newProber(), engine.FormatCompress, engine.OperationArchive, archiveParams("/out/a.txt.Z", 4))
	step := sel.Plan.Steps[0]
	assert.Equal(t, []string{"compress", "-c", "/src/a.txt"}, step.Stages[0].Args)
	assert.True(t, step.Succeeded(engine.ExitStatus{Code: 2}))

	sel = selectPlan(t, newProber("gunzip"), engine.FormatTarCompress, engine.OperationExtract, extractParams("/in/a.tar.Z", 1))
	assert.Equal(t, [][]string{
		{"gunzip", "-c", "/in/a.tar.Z"},
		{"tar", "-x", "-f", "-", "-C", "/outdir", "-v"},
	}, argvs(sel.Plan.Steps[0]))
}

func TestStreamExtract_WritesStem(t *testing.T) {
	sel := selectPlan(t, newProber("unxz"), engine.FormatXz, engine.OperationExtract, extractParams("/in/notes.txt.xz", 1))
	step := sel.Plan.Steps[0]
	assert.Equal(t, [][]string{{"unxz", "-c", "/in/notes.txt.xz"}}, argvs(step))
	assert.Equal(t, "/outdir/notes.txt", step.Stdout)
	assert.Equal(t, []string{"/outdir/notes.txt"}, sel.Plan.Outputs)
	assert.Equal(t, "/outdir/notes.txt", StreamTarget("/in/notes.txt.xz", "/outdir"))
}

func TestTarWrappedExtract_TwoStages(t *testing.T) {
	p := extractParams("/in/a.tar.zst", 1)
	p.SingleThread = true
	p.Quiet = true
	sel := selectPlan(t, newProber(), engine.FormatTarZstd, engine.OperationExtract, p)
	assert.Equal(t, [][]string{
		{"zstd", "-d", "-c", "/in/a.tar.zst"},
		{"tar", "-x", "-f", "-", "-C", "/outdir"},
	}, argvs(sel.Plan.Steps[0]))
}

func TestQuietFlags(t *testing.T) {
	p := archiveParams("/out/a.txt.gz", 1)
	p.Quiet = true
	sel := selectPlan(t, newProber(), engine.FormatGzip, engine.OperationArchive, p)
	assert.Equal(t, []string{"gzip", "-c", "/src/a.txt", "-q"}, sel.Plan.Steps[0].Stages[0].Args)

	e := extractParams("/in/a.zip", 1)
	e.Quiet = true
	sel = selectPlan(t, newProber(), engine.FormatZip, engine.OperationExtract, e)
	assert.Equal(t, []string{"unzip", "-P", "", "-qq", "-O", "UTF-8", "-o", "/in/a.zip", "-d", "/outdir"}, sel.Plan.Steps[0].Stages[0].Args)
}

func TestToolPathOverrides(t *testing.T) {
	tools, err := engine.NewToolPaths(map[engine.Tool]string{engine.Tool7z: "/opt/7zz", engine.ToolTar: "/usr/bin/bsdtar"})
	require.NoError(t, err)

	p := archiveParams("/out/a.tar.7z", 1)
	p.Tools = tools
	sel := selectPlan(t, newProber(), engine.FormatTar7z, engine.OperationArchive, p)
	assert.Equal(t, "/usr/bin/bsdtar", sel.Plan.Steps[0].Stages[0].Args[0])
	assert.Equal(t, "/opt/7zz", sel.Plan.Steps[0].Stages[1].Args[0])
}

func TestSplitKiB(t *testing.T) {
	assert.Equal(t, uint64(64), splitKiB(65536))
	assert.Equal(t, uint64(98), splitKiB(100000))
	assert.Equal(t, uint64(1), splitKiB(1000))
	assert.Nil(t, volumeFlag(engine.Params{}))
	assert.Equal(t, []string{"-v98k"}, volumeFlag(engine.Params{SplitSize: 100000}))
}

func suffix(f engine.ArchiveFormat) string {
	return engine.Suffixes(f)[0]
}
