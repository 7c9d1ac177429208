package app

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/vk/stringalong/internal/ctxlog"
	"github.com/vk/stringalong/internal/fsutil"
	"github.com/vk/stringalong/internal/registry"
)

// watch generates once, then regenerates whenever a grammar file or the job
// file changes. A changed job file is reloaded and its sinks rebuilt before
// the next run. Rapid bursts of events collapse into one run. Reload and
// generation failures are logged and do not stop the loop.
func (a *App) watch(ctx context.Context, sinks []registry.Sink) error {
	logger := ctxlog.FromContext(ctx)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create fsnotify watcher")
	}
	defer w.Close()

	dirs, err := a.watchDirs()
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			return errors.Wrapf(err, "failed to watch %s", dir)
		}
	}
	logger.Info("Watching for grammar changes.", "dirs", dirs)

	if err := a.generate(ctx, sinks); err != nil {
		logger.Error("Generation failed.", "error", err)
	}

	trigger := make(chan struct{}, 1)
	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	jobChanged := false
	schedule := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(a.debounce, func() {
			select {
			case trigger <- struct{}{}:
			default:
			}
		})
	}
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Watch stopped.")
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !a.isWatched(event.Name) {
				continue
			}
			logger.Debug("Watcher detected change.", "file", event.Name, "op", event.Op.String())
			if a.isJobFile(event.Name) {
				jobChanged = true
			}
			schedule()

		case <-trigger:
			if jobChanged {
				jobChanged = false
				reloaded, err := a.reloadJob(ctx, w)
				if err != nil {
					logger.Error("Job reload failed, keeping the previous job.", "error", err)
					continue
				}
				sinks = reloaded
			}
			if err := a.generate(ctx, sinks); err != nil {
				logger.Error("Generation failed.", "error", err)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error.", "error", err)
		}
	}
}

// watchDirs returns the directories to watch: every grammar directory, the
// parent of every grammar file, and the job file's directory.
func (a *App) watchDirs() ([]string, error) {
	var dirs []string
	add := func(d string) {
		if !slices.Contains(dirs, d) {
			dirs = append(dirs, d)
		}
	}

	files, err := a.grammarFiles()
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		add(filepath.Dir(f))
	}
	for _, g := range a.job.Grammar {
		if !slices.ContainsFunc(files, func(f string) bool { return f == filepath.Clean(g) }) {
			add(filepath.Clean(g))
		}
	}
	if a.cfg.JobPath != "" {
		add(filepath.Dir(filepath.Clean(a.cfg.JobPath)))
	}
	return dirs, nil
}

// reloadJob re-reads the job file, rebuilds the sinks and starts watching any
// directory the new job adds. The app keeps its previous job on error.
func (a *App) reloadJob(ctx context.Context, w *fsnotify.Watcher) ([]registry.Sink, error) {
	logger := ctxlog.FromContext(ctx)

	job, err := a.resolveJob(ctx)
	if err != nil {
		return nil, err
	}
	sinks, err := a.buildSinks(ctx, job)
	if err != nil {
		return nil, err
	}
	a.job = job

	dirs, err := a.watchDirs()
	if err != nil {
		return nil, err
	}
	watched := w.WatchList()
	for _, dir := range dirs {
		if slices.Contains(watched, dir) {
			continue
		}
		if err := w.Add(dir); err != nil {
			logger.Warn("Failed to watch directory.", "dir", dir, "error", err)
		}
	}
	logger.Info("Job file reloaded.", "path", a.cfg.JobPath, "grammar", job.Grammar, "sinks", job.SinkTypes())
	return sinks, nil
}

func (a *App) isJobFile(name string) bool {
	return a.cfg.JobPath != "" && filepath.Clean(name) == filepath.Clean(a.cfg.JobPath)
}

// isWatched reports whether a change to name should trigger regeneration.
func (a *App) isWatched(name string) bool {
	if a.isJobFile(name) {
		return true
	}
	name = filepath.Clean(name)
	for _, g := range a.job.Grammar {
		if name == filepath.Clean(g) {
			return true
		}
	}
	lower := strings.ToLower(name)
	return slices.ContainsFunc(fsutil.GrammarExtensions, func(ext string) bool {
		return strings.HasSuffix(lower, ext)
	})
}
