// Package watcher reports changes to the inventory document on disk, with
// debouncing so a burst of writes produces one signal.
package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/hoard/internal/log"
)

// Watcher monitors a document file (and, for SQLite, its WAL) for changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	names     map[string]struct{}
	debounce  time.Duration
	onChange  chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
}

// Config holds watcher configuration options.
type Config struct {
	Path     string
	Debounce time.Duration
}

// DefaultConfig returns the default configuration for path.
func DefaultConfig(path string) Config {
	return Config{
		Path:     path,
		Debounce: 500 * time.Millisecond,
	}
}

// New creates a watcher. Nothing is watched until Start.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	base := filepath.Base(cfg.Path)
	return &Watcher{
		fsWatcher: fsw,
		path:      cfg.Path,
		names: map[string]struct{}{
			base:          {},
			base + "-wal": {},
		},
		debounce: cfg.Debounce,
		onChange: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}, nil
}

// Start watches the directory containing the document. The returned channel
// receives one signal per debounced burst of changes.
func (w *Watcher) Start() (<-chan struct{}, error) {
	// Atomic saves replace the file, so the directory is watched rather
	// than the file itself.
	dir := filepath.Dir(w.path)
	if err := w.fsWatcher.Add(dir); err != nil {
		return nil, fmt.Errorf("watching directory %s: %w", dir, err)
	}

	go w.loop()

	log.Debug(log.CatWatcher, "watching document", "path", w.path, "debounce", w.debounce)
	return w.onChange, nil
}

// Stop terminates the watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
	})
	return err
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevantEvent(event) {
				continue
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			select {
			case w.onChange <- struct{}{}:
				log.Debug(log.CatWatcher, "document changed", "path", w.path)
			default:
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "watch error", err, "path", w.path)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// isRelevantEvent reports whether event touches the document or its WAL.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	_, ok := w.names[filepath.Base(event.Name)]
	return ok
}
