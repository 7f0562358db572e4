package payload

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce is the delay before triggering a rebuild after markdown
// artifacts change on disk.
const watchDebounce = 500 * time.Millisecond

// Watcher monitors the plan/status file and the memory directory for
// changes and invokes a rebuild callback, debounced so a burst of saves
// triggers a single rebuild.
type Watcher struct {
	paths    []string
	onChange func()

	fsw    *fsnotify.Watcher
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
}

// NewWatcher creates a watcher over the given files/directories (plan
// file, status file, memory directory). onChange is invoked from the
// debounce timer's goroutine after the debounce window closes.
func NewWatcher(paths []string, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{paths: paths, onChange: onChange, fsw: fsw}, nil
}

// Start begins watching. Missing paths are skipped rather than treated
// as fatal, since a fresh workspace may not have written every artifact
// yet.
func (w *Watcher) Start(ctx context.Context) error {
	watched := 0
	for _, p := range w.paths {
		target := p
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			target = dirOf(p)
		}
		if err := w.fsw.Add(target); err != nil {
			if !os.IsNotExist(err) {
				slog.Warn("payload watcher: cannot watch path", "path", target, "error", err)
			}
			continue
		}
		watched++
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.loop(ctx)

	slog.Info("payload watcher started", "paths", len(w.paths), "watched", watched)
	return nil
}

// Stop shuts down the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.fsw.Close()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("payload watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".md") && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	w.scheduleRebuild()
}

func (w *Watcher) scheduleRebuild() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = true

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(watchDebounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if !w.pending {
		w.mu.Unlock()
		return
	}
	w.pending = false
	w.mu.Unlock()

	slog.Info("payload artifacts changed, rebuilding")
	w.onChange()
}

func dirOf(p string) string {
	i := strings.LastIndexAny(p, "/\\")
	if i < 0 {
		return "."
	}
	return p[:i]
}
