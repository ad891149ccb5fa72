// Package pipeline runs a full content build: it wipes the previous output, enumerates the
// content roots, builds the registry, compiles shaders and writes the generated code and
// manifest. Every run starts from scratch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/spaghettifunk/contentbuild/content/classify"
	"github.com/spaghettifunk/contentbuild/content/codegen"
	"github.com/spaghettifunk/contentbuild/content/config"
	"github.com/spaghettifunk/contentbuild/content/manifest"
	"github.com/spaghettifunk/contentbuild/content/registry"
	"github.com/spaghettifunk/contentbuild/content/shaders"
	"github.com/spaghettifunk/contentbuild/engine/core"
)

type Options struct {
	// SkipShaders leaves the toolchain alone; the registry and manifest still point at the
	// compiled lookup paths.
	SkipShaders bool
	// ShadersOnly compiles shaders and stops. The previous build output is kept and no
	// code or manifest is written.
	ShadersOnly bool
	// Stream copies the compiler output to the terminal while it runs.
	Stream bool
	// Runner replaces the process runner used for the shader compiler.
	Runner shaders.Runner
}

// Timing is the wall time of one phase.
type Timing struct {
	Phase    string
	Duration time.Duration
}

type Result struct {
	RunID      string
	Files      []string
	Registry   *registry.Registry
	Compile    *shaders.Report
	Collisions []registry.Collision
	Renames    []codegen.Rename
	Timings    []Timing
}

// Err reports the non-fatal shader failures of the run, if any.
func (r *Result) Err() error {
	if r.Compile == nil {
		return nil
	}
	return r.Compile.Err()
}

// Run executes one build. Errors returned here are fatal; compile failures are only
// reported through Result.Err so the registry and manifest still get written.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	log := core.Logger().With("run", res.RunID)
	if opts.ShadersOnly && (opts.SkipShaders || cfg.Shaders.Skip) {
		return nil, fmt.Errorf("%w: shaders-only run with shader compilation disabled", core.ErrInvalidConfig)
	}
	log.Info("Building content...")

	var toolchain string
	if !opts.SkipShaders && !cfg.Shaders.Skip {
		dir, err := cfg.ToolchainDir()
		if err != nil {
			return nil, err
		}
		toolchain = dir
	}

	classOpts, err := cfg.ClassifierOptions()
	if err != nil {
		return nil, err
	}
	classifier, err := classify.New(classOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidConfig, err)
	}

	clock := core.NewClock()
	phase := func(name string, fn func() error) error {
		clock.Start()
		err := fn()
		res.Timings = append(res.Timings, Timing{Phase: name, Duration: clock.Stop()})
		return err
	}

	if err := phase("clean", func() error {
		if !opts.ShadersOnly {
			clean(cfg.Paths.BuildRoot)
		}
		return os.MkdirAll(cfg.Paths.BuildRoot, 0o755)
	}); err != nil {
		return nil, fmt.Errorf("create build root: %w", err)
	}

	if err := phase("enumerate", func() error {
		files, err := Enumerate(cfg.Paths.ContentRoots, cfg.Paths.BuildRoot, cfg.Pipeline.SortPaths)
		res.Files = files
		return err
	}); err != nil {
		return nil, err
	}

	_ = phase("classify", func() error {
		b := registry.NewBuilder(classifier, cfg.Resolver.RootTokens)
		b.AddAll(res.Files)
		res.Registry = b.Registry()
		if b.Misses() > 0 {
			log.Debug("unclassified files", "count", b.Misses())
		}
		return nil
	})

	res.Collisions = res.Registry.Collisions()
	for _, c := range res.Collisions {
		core.LogWarn("manifest collision: %s", c)
	}

	if toolchain != "" {
		_ = phase("shaders", func() error {
			compiler := &shaders.Compiler{
				BinDir:     toolchain,
				Executable: cfg.Shaders.Executable,
				Timeout:    cfg.Shaders.Timeout.Duration,
				Jobs:       cfg.Shaders.Jobs,
				Runner:     opts.Runner,
			}
			if compiler.Runner == nil {
				compiler.Runner = shaders.ExecRunner{Stream: opts.Stream}
			}
			res.Compile = compiler.Compile(ctx, shaders.JobsFor(res.Registry))
			return nil
		})
	}

	if opts.ShadersOnly {
		log.Info("Building shaders...Finished", "shaders", len(res.Compile.Compiled)+len(res.Compile.Failures))
		return res, nil
	}

	if err := phase("emit", func() error {
		return emit(cfg, res)
	}); err != nil {
		return nil, err
	}

	for _, t := range res.Timings {
		log.Debug("phase finished", "phase", t.Phase, "took", t.Duration)
	}
	log.Info("Building content...Finished", "assets", res.Registry.Len(), "namespaces", len(res.Registry.Namespaces()))
	return res, nil
}

func clean(buildRoot string) {
	if err := os.RemoveAll(buildRoot); err != nil {
		core.LogWarn("could not remove previous build output %s: %v", buildRoot, err)
	}
}

func emit(cfg *config.Config, res *Result) error {
	out, err := codegen.Generate(res.Registry, codegen.Options{
		Package:      cfg.Codegen.Package,
		AssetsImport: cfg.Codegen.AssetsImport,
	})
	if err != nil {
		return err
	}
	for _, r := range out.Renames {
		core.LogWarn("accessor name collision: %s", r)
	}
	res.Renames = out.Renames

	files := []struct {
		path string
		data []byte
	}{
		{cfg.Paths.Declarations, out.Declarations},
		{cfg.Paths.Definitions, out.Definitions},
		{cfg.Paths.Manifest, manifest.Render(res.Registry)},
	}
	for _, f := range files {
		if err := writeFile(f.path, f.data); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	core.LogDebug("wrote %s (%d bytes)", path, len(data))
	return nil
}

// Enumerate walks every root and returns the regular files found, skipping anything under
// buildRoot. Missing roots are logged and skipped. With sortPaths the result is in lexical
// order, otherwise roots are visited in order and each in walk order.
func Enumerate(roots []string, buildRoot string, sortPaths bool) ([]string, error) {
	skip := ""
	if buildRoot != "" {
		if abs, err := filepath.Abs(buildRoot); err == nil {
			skip = abs
		}
	}

	var files []string
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root && errors.Is(err, fs.ErrNotExist) {
					core.LogWarn("content root %s does not exist", root)
					return filepath.SkipDir
				}
				return err
			}
			if d.IsDir() {
				if abs, err := filepath.Abs(path); err == nil && abs == skip {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("enumerate %s: %w", root, err)
		}
	}
	if sortPaths {
		sort.Strings(files)
	}
	return files, nil
}
