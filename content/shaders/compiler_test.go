package shaders

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/contentbuild/content/classify"
	"github.com/spaghettifunk/contentbuild/content/naming"
	"github.com/spaghettifunk/contentbuild/content/registry"
	"github.com/spaghettifunk/contentbuild/engine/core"
)

type call struct {
	command string
	args    []string
}

type fakeRunner struct {
	mu    sync.Mutex
	calls []call
	fail  map[string]bool
	block bool
}

func (f *fakeRunner) Run(ctx context.Context, command string, args []string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{command: command, args: args})
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.fail[args[0]] {
		return args[0] + ": error: syntax error", errors.New("exit status 1")
	}
	return "", os.WriteFile(args[2], []byte{0x03, 0x02, 0x23, 0x07}, 0o644)
}

func testJobs(dir string, names ...string) []Job {
	var jobs []Job
	for i, n := range names {
		jobs = append(jobs, Job{
			AssetID: uint32(i),
			Source:  filepath.Join("Shaders", n),
			Output:  filepath.Join(dir, "Build", "Content", "Shaders", n+".spv"),
		})
	}
	return jobs
}

func TestCompileSuccess(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{}
	c := &Compiler{BinDir: "/opt/vulkan/bin", Runner: runner}

	jobs := testJobs(dir, "basic.vert", "basic.frag")
	report := c.Compile(context.Background(), jobs)

	require.NoError(t, report.Err())
	assert.Equal(t, jobs, report.Compiled)
	require.Len(t, runner.calls, 2)
	assert.Equal(t, c.Path(), runner.calls[0].command)
	assert.Equal(t, []string{jobs[0].Source, "-o", jobs[0].Output}, runner.calls[0].args)
	assert.FileExists(t, jobs[1].Output)
}

func TestCompileFailureIsReportedAndOthersContinue(t *testing.T) {
	dir := t.TempDir()
	jobs := testJobs(dir, "a.vert", "broken.frag", "c.vert")
	runner := &fakeRunner{fail: map[string]bool{jobs[1].Source: true}}
	c := &Compiler{Runner: runner, Jobs: 2}

	report := c.Compile(context.Background(), jobs)

	require.Len(t, report.Failures, 1)
	assert.Equal(t, jobs[1], report.Failures[0].Job)
	assert.Contains(t, report.Failures[0].Output, "syntax error")
	assert.Equal(t, []Job{jobs[0], jobs[2]}, report.Compiled)
	assert.Len(t, runner.calls, 3)

	err := report.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrCompileFailed)
	assert.Contains(t, err.Error(), "1 of 3 shaders")
	assert.Contains(t, err.Error(), "broken.frag")
}

func TestCompileNeverOverwritesSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "blur.comp")
	require.NoError(t, os.WriteFile(src, []byte("#version 450"), 0o644))
	runner := &fakeRunner{}
	c := &Compiler{Runner: runner}

	report := c.Compile(context.Background(), []Job{{AssetID: 0, Source: src, Output: filepath.Join(dir, ".", "blur.comp")}})
	require.Len(t, report.Failures, 1)
	assert.ErrorContains(t, report.Failures[0].Err, "overwrite the shader source")
	assert.Empty(t, runner.calls)

	data, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "#version 450", string(data))
}

func TestCompileTimeout(t *testing.T) {
	dir := t.TempDir()
	c := &Compiler{Runner: &fakeRunner{block: true}, Timeout: 10 * time.Millisecond}

	report := c.Compile(context.Background(), testJobs(dir, "hang.vert"))
	require.Len(t, report.Failures, 1)
	assert.ErrorIs(t, report.Failures[0].Err, context.DeadlineExceeded)
}

func TestCompileCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := &fakeRunner{}
	c := &Compiler{Runner: runner}

	report := c.Compile(ctx, testJobs(t.TempDir(), "a.vert", "b.frag"))
	assert.Len(t, report.Failures, 2)
	assert.Empty(t, runner.calls)
}

func TestExecRunnerReportsMissingBinary(t *testing.T) {
	c := &Compiler{BinDir: t.TempDir(), Runner: ExecRunner{}}
	report := c.Compile(context.Background(), testJobs(t.TempDir(), "a.vert"))
	require.Len(t, report.Failures, 1)
	assert.Error(t, report.Failures[0].Err)
}

func TestExecRunnerStreamStillCaptures(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)

	for _, stream := range []bool{false, true} {
		out, err := ExecRunner{Stream: stream}.Run(context.Background(), exe, []string{"-test.run=^$"})
		require.NoError(t, err)
		assert.Contains(t, out, "PASS", "stream=%v", stream)
	}
}

func TestPath(t *testing.T) {
	exe := "glslc"
	if runtime.GOOS == "windows" {
		exe += ".exe"
	}
	assert.Equal(t, exe, (&Compiler{}).Path())
	assert.Equal(t, filepath.Join("bin", exe), (&Compiler{BinDir: "bin"}).Path())
	assert.True(t, strings.HasPrefix((&Compiler{Executable: "dxc"}).Path(), "dxc"))
}

func TestJobsFor(t *testing.T) {
	c, err := classify.New(classify.Options{})
	require.NoError(t, err)
	b := registry.NewBuilder(c, naming.DefaultRootTokens)
	b.AddAll([]string{"Content/icon.png", "Shaders/basic.vert", "Content/cube.fbx", "Shaders/basic.frag"})

	jobs := JobsFor(b.Registry())
	assert.Equal(t, []Job{
		{AssetID: 1, Source: "Shaders/basic.vert", Output: "Build/Content/Shaders/basic.vert.spv"},
		{AssetID: 3, Source: "Shaders/basic.frag", Output: "Build/Content/Shaders/basic.frag.spv"},
	}, jobs)
}
