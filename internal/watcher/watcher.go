// Package watcher revalidates recently opened projects whenever their page
// document changes on disk.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kristianernst/fast-slides/internal/models"
	"github.com/kristianernst/fast-slides/internal/registry"
	"github.com/kristianernst/fast-slides/internal/storage"
)

// Event kinds passed to EventCallback.
const (
	KindValidated = "validated"
	KindRemoved   = "removed"
)

// Validator checks one canonical project folder.
type Validator func(dir string) (*models.ValidationReport, error)

// EventCallback is called after a watcher-driven check. report is nil for
// KindRemoved.
type EventCallback func(kind, dir string, report *models.ValidationReport)

// Options tune the watch loop.
type Options struct {
	// Debounce collapses bursts of writes to one check per project.
	Debounce time.Duration
	// Rescan is how often the registry is re-read to follow newly opened
	// or removed projects. Zero disables rescans after startup.
	Rescan time.Duration
}

// Watch follows the page documents of every recent project in store and
// calls check after each settled change until ctx is cancelled.
func Watch(ctx context.Context, store *registry.Store, check Validator, opts Options, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if opts.Debounce <= 0 {
		opts.Debounce = 200 * time.Millisecond
	}

	// flushTimer debounces checks across a burst of events.
	var flushTimer *time.Timer
	var flushCh <-chan time.Time
	pending := make(map[string]struct{})

	scheduleFlush := func() {
		if flushTimer == nil {
			flushTimer = time.NewTimer(opts.Debounce)
			flushCh = flushTimer.C
		} else {
			flushTimer.Reset(opts.Debounce)
		}
	}

	watched := make(map[string]struct{})
	rescan := func() {
		cfg, err := store.Current()
		if err != nil {
			logger.Warn("watcher: load registry failed", slog.String("error", err.Error()))
			return
		}
		want := make(map[string]struct{}, len(cfg.RecentProjects))
		for _, dir := range cfg.RecentProjects {
			want[dir] = struct{}{}
			if _, ok := watched[dir]; ok {
				continue
			}
			if addErr := w.Add(dir); addErr != nil {
				logger.Warn("watcher: add project failed", slog.String("path", dir), slog.String("error", addErr.Error()))
				continue
			}
			watched[dir] = struct{}{}
			logger.Debug("watcher: watching project", slog.String("path", dir))
		}
		for dir := range watched {
			if _, ok := want[dir]; !ok {
				_ = w.Remove(dir)
				delete(watched, dir)
				logger.Debug("watcher: dropped project", slog.String("path", dir))
				if !storage.IsProject(dir) {
					pending[dir] = struct{}{}
					scheduleFlush()
				}
			}
		}
	}
	rescan()
	logger.Info("watcher: started", slog.Int("projects", len(watched)))

	var rescanCh <-chan time.Time
	if opts.Rescan > 0 {
		ticker := time.NewTicker(opts.Rescan)
		defer ticker.Stop()
		rescanCh = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			if flushTimer != nil {
				flushTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-rescanCh:
			rescan()

		case <-flushCh:
			flush(pending, check, logger, cb)
			pending = make(map[string]struct{})

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != storage.PageFileName {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			dir := filepath.Dir(ev.Name)
			if _, ok := watched[dir]; !ok {
				continue
			}
			pending[dir] = struct{}{}
			scheduleFlush()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// flush checks every pending project in path order.
func flush(pending map[string]struct{}, check Validator, logger *slog.Logger, cb EventCallback) {
	dirs := make([]string, 0, len(pending))
	for dir := range pending {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		if !storage.IsProject(dir) {
			logger.Debug("watcher: page removed", slog.String("path", dir))
			if cb != nil {
				cb(KindRemoved, dir, nil)
			}
			continue
		}
		report, err := check(dir)
		if err != nil {
			logger.Warn("watcher: validate failed", slog.String("path", dir), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("watcher: validated", slog.String("path", dir),
			slog.Int("errors", len(report.Errors)), slog.Int("warnings", len(report.Warnings)))
		if cb != nil {
			cb(KindValidated, dir, report)
		}
	}
}
