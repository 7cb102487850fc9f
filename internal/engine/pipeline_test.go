package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipeline_String(t *testing.T) {
	p := Pipeline{
		Stages: []Stage{
			{Tool: ToolTar, Args: []string{"tar", "-c", "-f", "-", "-C", "/src", "a.txt"}},
			{Tool: Tool7z, Args: []string{"7z", "a", "-si", "-phunter2", "/out/a.tar.7z"}},
		},
		Stdout: "/out/log",
		Secret: "hunter2",
	}

	assert.Equal(t, "tar -c -f - -C /src a.txt | 7z a -si -p****** /out/a.tar.7z > /out/log", p.String())
	assert.Equal(t, Tool7z, p.Tool())
	assert.Equal(t, Tool(""), Pipeline{}.Tool())
}

func TestPipeline_Succeeded(t *testing.T) {
	plain := Pipeline{}
	assert.True(t, plain.Succeeded(ExitStatus{Code: 0}))
	assert.False(t, plain.Succeeded(ExitStatus{Code: 2}))

	compress := Pipeline{SuccessCodes: []int{0, 2}}
	assert.True(t, compress.Succeeded(ExitStatus{Code: 2}))
	assert.False(t, compress.Succeeded(ExitStatus{Code: 1}))
	assert.False(t, compress.Succeeded(ExitStatus{Code: 0, Signaled: true}))
}

func TestExitStatus_ExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitStatus{}.ExitCode())
	assert.Equal(t, 7, ExitStatus{Code: 7}.ExitCode())
	assert.Equal(t, ExitCodeAbnormal, ExitStatus{Code: -1, Signaled: true}.ExitCode())
}
