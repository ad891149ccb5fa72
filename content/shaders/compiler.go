// Package shaders drives the external shader toolchain. Every shader source is compiled
// once into the lookup path the classifier assigned to it; a failed compile is recorded
// and the remaining shaders still build.
package shaders

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spaghettifunk/contentbuild/content/classify"
	"github.com/spaghettifunk/contentbuild/content/registry"
	"github.com/spaghettifunk/contentbuild/engine/core"
)

const DefaultExecutable = "glslc"

// Job compiles Source into Output.
type Job struct {
	AssetID uint32
	Source  string
	Output  string
}

// Failure is a job whose compiler invocation failed or exited non-zero.
type Failure struct {
	Job    Job
	Output string
	Err    error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Job.Source, f.Err)
}

// Report collects the outcome of a Compile call, in job order.
type Report struct {
	Compiled []Job
	Failures []Failure
}

// Err is nil when every job succeeded, otherwise it wraps core.ErrCompileFailed and every
// individual failure.
func (r *Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures)+1)
	errs = append(errs, fmt.Errorf("%w: %d of %d shaders", core.ErrCompileFailed, len(r.Failures), len(r.Failures)+len(r.Compiled)))
	for _, f := range r.Failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

// JobsFor returns a compile job for every shader descriptor, in ID order.
func JobsFor(reg *registry.Registry) []Job {
	var jobs []Job
	for _, d := range reg.Descriptors() {
		if d.Type != classify.TypeShader {
			continue
		}
		jobs = append(jobs, Job{AssetID: d.ID, Source: d.SourcePath, Output: d.LookupPath})
	}
	return jobs
}

type Compiler struct {
	// BinDir is the toolchain's binary directory.
	BinDir string
	// Executable is the compiler name inside BinDir.
	Executable string
	// Timeout bounds a single invocation. Zero means no timeout.
	Timeout time.Duration
	// Jobs is the number of concurrent invocations; anything below 1 runs sequentially.
	Jobs   int
	Runner Runner
}

// Path is the full path of the compiler binary.
func (c *Compiler) Path() string {
	exe := c.Executable
	if exe == "" {
		exe = DefaultExecutable
	}
	if runtime.GOOS == "windows" && filepath.Ext(exe) == "" {
		exe += ".exe"
	}
	if c.BinDir == "" {
		return exe
	}
	return filepath.Join(c.BinDir, exe)
}

// Compile runs the toolchain once per job. It only returns early when ctx is cancelled;
// jobs that never started are reported as failures.
func (c *Compiler) Compile(ctx context.Context, jobs []Job) *Report {
	runner := c.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	limit := c.Jobs
	if limit < 1 {
		limit = 1
	}

	errs := make([]error, len(jobs))
	outputs := make([]string, len(jobs))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		g.Go(func() error {
			outputs[i], errs[i] = c.compileOne(ctx, runner, job)
			return nil
		})
	}
	_ = g.Wait()

	report := &Report{}
	for i, job := range jobs {
		if errs[i] != nil {
			core.LogError("Building shaders...%s failed: %v", job.Source, errs[i])
			report.Failures = append(report.Failures, Failure{Job: job, Output: outputs[i], Err: errs[i]})
			continue
		}
		report.Compiled = append(report.Compiled, job)
	}
	return report
}

func (c *Compiler) compileOne(ctx context.Context, runner Runner, job Job) (string, error) {
	core.LogInfo("Building shaders...%s", filepath.Base(job.Source))

	if filepath.Clean(job.Output) == filepath.Clean(job.Source) {
		return "", fmt.Errorf("output %s would overwrite the shader source", job.Output)
	}

	if err := os.MkdirAll(filepath.Dir(job.Output), 0o755); err != nil {
		return "", err
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	return runner.Run(ctx, c.Path(), []string{job.Source, "-o", job.Output})
}
