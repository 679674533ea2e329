// Package watch observes a project's .claude directory and reports when
// the harness configuration or workflow state changes on disk. It backs
// the `phasegate watch` command, which keeps a live view of the active
// mode and phase while an agent session runs alongside.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ppiankov/phasegate/internal/config"
	"github.com/ppiankov/phasegate/internal/workflow"
)

// debounceDefault collapses editor write bursts into one notification.
const debounceDefault = 500 * time.Millisecond

// pollDefault is the polling interval when fsnotify is unavailable
// (e.g., NFS mounts).
const pollDefault = 2 * time.Second

// watchedFiles are the .claude entries that affect gate decisions.
var watchedFiles = map[string]bool{
	config.ConfigFileName:     true,
	config.InitMarkerFileName: true,
	workflow.StateFileName:    true,
}

// Watcher reports changes to the harness files under one working
// directory. The handler receives the base name of the changed file;
// changes within the debounce window coalesce into a single call.
type Watcher struct {
	workDir  string
	handler  func(name string)
	debounce time.Duration
}

// New creates a watcher for the working directory.
func New(workDir string, handler func(name string)) *Watcher {
	return &Watcher{
		workDir:  workDir,
		handler:  handler,
		debounce: debounceDefault,
	}
}

// Dir returns the directory the watcher observes.
func (w *Watcher) Dir() string {
	return filepath.Join(w.workDir, config.ConfigDirName)
}

// Run watches the .claude directory. The directory must exist before
// the watch starts; config and state files may appear later. Blocks
// until ctx is cancelled. Falls back to polling when the native
// watcher cannot be created.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return w.runPoll(ctx)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(w.Dir()); err != nil {
		return fmt.Errorf("watch %s: %w", w.Dir(), err)
	}

	// Single debounce timer, reset on each relevant event. Pending
	// names accumulate under the mutex until the timer fires.
	var mu sync.Mutex
	pending := make(map[string]bool)

	debounceTimer := time.NewTimer(w.debounce)
	debounceTimer.Stop()
	defer debounceTimer.Stop()

	flush := func() {
		mu.Lock()
		batch := make([]string, 0, len(pending))
		for name := range pending {
			batch = append(batch, name)
		}
		pending = make(map[string]bool)
		mu.Unlock()

		for _, name := range batch {
			w.handler(name)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-debounceTimer.C:
			flush()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			name := filepath.Base(event.Name)
			if !watchedFiles[name] {
				continue
			}

			mu.Lock()
			pending[name] = true
			mu.Unlock()

			if !debounceTimer.Stop() {
				select {
				case <-debounceTimer.C:
				default:
				}
			}
			debounceTimer.Reset(w.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}
	}
}

// runPoll compares file modification times on a fixed interval.
func (w *Watcher) runPoll(ctx context.Context) error {
	last := w.snapshot()

	ticker := time.NewTicker(pollDefault)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			current := w.snapshot()
			for name, mtime := range current {
				if last[name] != mtime {
					w.handler(name)
				}
			}
			for name := range last {
				if _, ok := current[name]; !ok {
					w.handler(name)
				}
			}
			last = current
		}
	}
}

// snapshot records the mtimes of the watched files that exist.
func (w *Watcher) snapshot() map[string]time.Time {
	out := make(map[string]time.Time, len(watchedFiles))
	for name := range watchedFiles {
		if fi, err := os.Stat(filepath.Join(w.Dir(), name)); err == nil {
			out[name] = fi.ModTime()
		}
	}
	return out
}
