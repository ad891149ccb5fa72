package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/contentbuild/engine/core"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func contentTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range []string{
		"Content/icon.png",
		"Content/ui/readme.txt",
		"LearnToads.Game/Shaders/basic.vert",
	} {
		p := filepath.Join(dir, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
	return dir
}

func TestExitCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		want ExitCode
	}{
		{nil, ExitOK},
		{errors.New("boom"), ExitFailure},
		{fmt.Errorf("x: %w", core.ErrMissingEnvironment), ExitConfig},
		{fmt.Errorf("x: %w", core.ErrInvalidConfig), ExitConfig},
		{fmt.Errorf("x: %w", core.ErrCompileFailed), ExitCompile},
		{&ExitError{Code: 7}, 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExitCodeOf(tt.err), "%v", tt.err)
	}
}

func TestExitErrorMessage(t *testing.T) {
	assert.Equal(t, "exit status 3", (&ExitError{Code: ExitCompile}).Error())

	inner := errors.New("inner")
	err := &ExitError{Code: ExitFailure, Err: inner}
	assert.Equal(t, "inner", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestBuildSkipShaders(t *testing.T) {
	dir := contentTree(t)
	wd, err := os.Getwd()
	require.NoError(t, err)

	_, err = run(t, "--cd", dir, "--skip-shaders", "-x")
	require.NoError(t, err)

	after, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd, after, "working directory restored")

	data, err := os.ReadFile(filepath.Join(dir, "Build/Content/content.csv"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"0,Content/icon.png,2",
		"1,Content/ui/readme.txt,0",
		"2,Build/Content/Shaders/basic.vert.spv,1",
	}, strings.Split(strings.TrimSpace(string(data)), "\n"))

	assert.FileExists(t, filepath.Join(dir, "LearnToads.Game/Content/content_gen.go"))
	assert.FileExists(t, filepath.Join(dir, "LearnToads.Game/Content/content_accessors_gen.go"))
}

func TestBuildMissingToolchain(t *testing.T) {
	dir := contentTree(t)
	t.Setenv("VulkanBinPath", "")

	_, err := run(t, "--cd", dir)
	require.Error(t, err)
	assert.Equal(t, ExitConfig, ExitCodeOf(err))
	assert.NoFileExists(t, filepath.Join(dir, "Build/Content/content.csv"))
}

func TestBuildMissingConfigFile(t *testing.T) {
	dir := contentTree(t)

	_, err := run(t, "--cd", dir, "--skip-shaders", "--config", "nope.toml")
	require.Error(t, err)
	assert.Equal(t, ExitConfig, ExitCodeOf(err))
}

func TestBuildBadLogLevel(t *testing.T) {
	dir := contentTree(t)
	t.Cleanup(func() { _ = core.SetLogLevel("info") })

	_, err := run(t, "--cd", dir, "--skip-shaders", "--log-level", "loud")
	require.Error(t, err)
	assert.Equal(t, ExitConfig, ExitCodeOf(err))
}

func TestBuildRejectsArgs(t *testing.T) {
	_, err := run(t, "extra")
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "--cd", dir, "classify", "Content/icon.png", `LearnToads.Game\Shaders\basic.frag`, "notes")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"ID", "PATH", "NAMESPACE", "TYPE", "ACCESSOR", "LOOKUP"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"0", "Content/icon.png", "Images", "Texture", "Icon", "Content/icon.png"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"1", `LearnToads.Game\Shaders\basic.frag`, "FragmentShaders", "Shader", "Basic", "Build/Content/Shaders/basic.frag.spv"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"2", "notes", "UnknownContent", "Unknown", "Notes", "notes"}, strings.Fields(lines[3]))
}

func TestClassifyNeedsPaths(t *testing.T) {
	_, err := run(t, "classify")
	assert.Error(t, err)
}

func TestShadersNeedToolchain(t *testing.T) {
	dir := contentTree(t)
	t.Setenv("VulkanBinPath", "")

	_, err := run(t, "--cd", dir, "shaders")
	require.Error(t, err)
	assert.Equal(t, ExitConfig, ExitCodeOf(err))

	_, err = run(t, "--cd", dir, "--skip-shaders", "shaders")
	require.Error(t, err)
	assert.Equal(t, ExitConfig, ExitCodeOf(err))
	assert.NoDirExists(t, filepath.Join(dir, "Build"))
}

func TestDebugLevelStreamsCompilerOutput(t *testing.T) {
	t.Cleanup(func() { _ = core.SetLogLevel("info") })
	opts := &rootOptions{skipShaders: true}

	require.NoError(t, core.SetLogLevel("info"))
	assert.False(t, opts.pipelineOptions().Stream)

	require.NoError(t, core.SetLogLevel("debug"))
	popts := opts.pipelineOptions()
	assert.True(t, popts.Stream)
	assert.True(t, popts.SkipShaders)
}
