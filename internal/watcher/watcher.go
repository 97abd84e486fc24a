// Package watcher reloads the tag blacklist when its pattern file changes
// on disk, so edits take effect without a restart.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce coalesces the rapid write/rename bursts editors produce
// when saving a file.
const defaultDebounce = 250 * time.Millisecond

// Watcher monitors one file and invokes a callback after changes settle.
// The parent directory is watched rather than the file itself: most editors
// save by renaming a temp file over the original, which drops a direct
// file watch.
type Watcher struct {
	path     string
	onChange func(context.Context) error
	debounce time.Duration
	logger   *slog.Logger

	fs   *fsnotify.Watcher
	mu   sync.Mutex
	t    *time.Timer
	done chan struct{}
	wg   sync.WaitGroup
}

// Options tunes the watcher.
type Options struct {
	// Debounce is the settle window after the last event (default: 250ms)
	Debounce time.Duration
}

// New creates a watcher for path. onChange runs after each settled change.
func New(path string, onChange func(context.Context) error, opts Options, logger *slog.Logger) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		path:     filepath.Clean(path),
		onChange: onChange,
		debounce: opts.Debounce,
		logger:   logger,
		fs:       fs,
		done:     make(chan struct{}),
	}

	if err := fs.Add(filepath.Dir(w.path)); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	w.wg.Add(1)
	go w.loop()

	w.logger.Info("watching blacklist file", "path", w.path)
	return w, nil
}

// Stop shuts the watcher down and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()

	w.mu.Lock()
	if w.t != nil {
		w.t.Stop()
	}
	w.mu.Unlock()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("blacklist watcher error", "error", err)
		}
	}
}

// schedule arms (or re-arms) the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.t != nil {
		w.t.Stop()
	}
	w.t = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	select {
	case <-w.done:
		return
	default:
	}

	if err := w.onChange(context.Background()); err != nil {
		w.logger.Error("blacklist reload failed", "path", w.path, "error", err)
		return
	}
	w.logger.Info("blacklist file changed, reloaded", "path", w.path)
}
