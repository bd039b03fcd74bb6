// Package watch reports trigger files that appear or change in a directory tree.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/onto16/internal/trigger"
)

// Event kinds passed to Callback.
const (
	KindCreated = "created"
	KindUpdated = "updated"
)

// DefaultDebounce is how long a file must stay quiet before it is reported.
const DefaultDebounce = 200 * time.Millisecond

// Callback is called once a trigger file has settled. path is relative to the watched root.
type Callback func(kind string, path string)

// Watcher watches a trigger directory.
type Watcher struct {
	root     string
	debounce time.Duration
	logger   *slog.Logger
}

// New creates a Watcher for root. A non-positive debounce uses DefaultDebounce.
func New(root string, debounce time.Duration, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{root: root, debounce: debounce, logger: logger}
}

// Watch processes file events under the root until ctx is cancelled.
//
// Editors and copy tools usually emit several writes per save, so events are
// coalesced per path and cb fires once the path has been quiet for the debounce
// interval. New directories are added to the watch list as they appear.
func (w *Watcher) Watch(ctx context.Context, cb Callback) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := addDirsRecursive(fw, w.root); err != nil {
		return err
	}

	w.logger.Info("watcher: started", slog.String("root", w.root))

	pending := make(map[string]string) // rel path -> kind
	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			timerCh = timer.C
		} else {
			timer.Reset(w.debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			for rel, kind := range pending {
				w.logger.Debug("watcher: settled", slog.String("path", rel), slog.String("op", kind))
				if cb != nil {
					cb(kind, rel)
				}
			}
			pending = make(map[string]string)

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(fw, ev.Name); addErr != nil {
						w.logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					} else {
						w.logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
					}
					w.queueDir(ev.Name, pending)
					schedule()
					continue
				}
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			base := filepath.Base(ev.Name)
			if !trigger.IsTriggerFile(base) || strings.HasPrefix(base, ".") {
				continue
			}
			rel, relErr := filepath.Rel(w.root, ev.Name)
			if relErr != nil {
				continue
			}

			kind := KindUpdated
			if ev.Op&fsnotify.Create != 0 {
				kind = KindCreated
			}
			// A create followed by writes is still a creation.
			if prev, ok := pending[rel]; !ok || prev != KindCreated {
				pending[rel] = kind
			}
			schedule()

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// queueDir marks trigger files already present in a newly created directory.
func (w *Watcher) queueDir(dir string, pending map[string]string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !trigger.IsTriggerFile(d.Name()) || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if rel, relErr := filepath.Rel(w.root, path); relErr == nil {
			pending[rel] = KindCreated
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
