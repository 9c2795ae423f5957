package config

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrWatcherClosed is returned by operations on a closed watcher.
var ErrWatcherClosed = errors.New("watcher closed")

// Handler receives freshly loaded settings after the file changes.
type Handler func(Settings)

// ErrorHandler receives reload failures. The previous settings stay in
// effect when a reload fails.
type ErrorHandler func(error)

// Watcher reloads a settings file when it changes on disk. Editors often
// replace files via rename, so the watch is placed on the directory and
// events are filtered to the target name.
type Watcher struct {
	mu sync.Mutex

	loader   *Loader
	fsw      *fsnotify.Watcher
	handler  Handler
	onError  ErrorHandler
	debounce time.Duration

	pending *time.Timer
	closed  bool
	done    chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithReloadDebounce sets how long the watcher waits after the last event
// before reloading.
func WithReloadDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithErrorHandler sets the reload-failure callback.
func WithErrorHandler(f ErrorHandler) WatcherOption {
	return func(w *Watcher) { w.onError = f }
}

// NewWatcher starts watching the loader's file, invoking handler with the
// new settings after each successful reload.
func NewWatcher(loader *Loader, handler Handler, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		loader:   loader,
		fsw:      fsw,
		handler:  handler,
		debounce: 100 * time.Millisecond,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	dir := filepath.Dir(loader.Path())
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	go w.loop()
	return w, nil
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.pending != nil {
		w.pending.Stop()
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	target := filepath.Clean(w.loader.Path())

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.reportError(err)
		}
	}
}

// scheduleReload collapses bursts of events into one reload.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	settings, err := w.loader.Load()
	if err != nil {
		w.reportError(err)
		return
	}
	w.handler(settings)
}

func (w *Watcher) reportError(err error) {
	w.mu.Lock()
	f := w.onError
	w.mu.Unlock()
	if f != nil {
		f(err)
	}
}
