package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/contentbuild/content/config"
	"github.com/spaghettifunk/contentbuild/engine/core"
)

// RunFunc receives the outcome of every build triggered by Watch.
type RunFunc func(*Result, error)

// Watch builds once, then rebuilds from scratch whenever something changes under the
// content roots. Bursts of events within the configured debounce window cause a single
// rebuild. Changes to the build output and the generated files are ignored. It returns
// when ctx is done.
func Watch(ctx context.Context, cfg *config.Config, opts Options, onRun RunFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	ignored := ignoredPaths(cfg)
	for _, root := range cfg.Paths.ContentRoots {
		if err := watchRecursive(w, root, ignored); err != nil {
			return err
		}
	}

	rebuild := func() {
		res, err := Run(ctx, cfg, opts)
		if onRun != nil {
			onRun(res, err)
		}
	}
	rebuild()

	debounce := cfg.Pipeline.Debounce.Duration
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if isIgnored(e.Name, ignored) {
				continue
			}
			if e.Op&fsnotify.Create != 0 {
				if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
					if err := watchRecursive(w, e.Name, ignored); err != nil {
						core.LogWarn("cannot watch %s: %v", e.Name, err)
					}
				}
			}
			core.LogDebug("content changed: %s", e)
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			core.LogError("watch: %v", err)

		case <-fire:
			fire = nil
			timer = nil
			rebuild()
		}
	}
}

// watchRecursive adds root and all directories below it to the watch list.
func watchRecursive(w *fsnotify.Watcher, root string, ignored []string) error {
	err := filepath.Walk(root, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if !fi.IsDir() {
			return nil
		}
		if isIgnored(walkPath, ignored) {
			return filepath.SkipDir
		}
		return w.Add(walkPath)
	})
	return err
}

func ignoredPaths(cfg *config.Config) []string {
	var out []string
	for _, p := range []string{cfg.Paths.BuildRoot, cfg.Paths.Declarations, cfg.Paths.Definitions, cfg.Paths.Manifest} {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			out = append(out, abs)
		}
	}
	return out
}

func isIgnored(path string, ignored []string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	for _, ig := range ignored {
		if abs == ig || strings.HasPrefix(abs, ig+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
