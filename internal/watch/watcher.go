// Package watch re-runs the full conversion pipeline when the source tree
// changes. There is no incremental conversion: every trigger recomputes the
// whole corpus, identifiers included.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces bursts of file system events into one rebuild.
const debounceWindow = 500 * time.Millisecond

// RebuildFunc runs one complete conversion of the source tree.
type RebuildFunc func(ctx context.Context) error

// Run watches root recursively and invokes rebuild after each debounced
// burst of relevant events, until ctx is cancelled. New directories created
// at runtime are added to the watch list. Paths matching skip (if non-nil)
// and .DS_Store files are ignored.
func Run(ctx context.Context, root string, skip *regexp.Regexp, logger *slog.Logger, rebuild RebuildFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var rebuildTimer *time.Timer
	var rebuildCh <-chan time.Time

	scheduleRebuild := func() {
		if rebuildTimer == nil {
			rebuildTimer = time.NewTimer(debounceWindow)
			rebuildCh = rebuildTimer.C
		} else {
			rebuildTimer.Reset(debounceWindow)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if rebuildTimer != nil {
				rebuildTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-rebuildCh:
			logger.Info("watcher: rebuilding")
			if err := rebuild(ctx); err != nil {
				// A failed conversion is fatal for a direct run, but the
				// watcher keeps going: the next save may fix the input.
				logger.Error("watcher: rebuild failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
				}
			}

			if filepath.Base(ev.Name) == ".DS_Store" {
				continue
			}
			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			if skip != nil && skip.MatchString(filepath.ToSlash(rel)) {
				continue
			}

			logger.Debug("watcher: change", slog.String("path", rel), slog.String("op", ev.Op.String()))
			scheduleRebuild()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds dir and every subdirectory to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return w.Add(p)
	})
}
