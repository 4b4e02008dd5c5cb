// Package watcher reloads the collection when export files in the data
// directory change. Events are debounced so a burst of writes (an export
// being copied in) triggers a single reload.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher watches one directory for JSON export changes.
type Watcher struct {
	dir      string
	debounce time.Duration
	onChange func()
	log      zerolog.Logger

	fw     *fsnotify.Watcher
	mu     sync.Mutex
	dirty  bool
	lastEv time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a watcher over dir. onChange is invoked (from the watcher's
// goroutine) after the debounce window closes; it should trigger a full
// reload.
func New(dir string, debounce time.Duration, onChange func(), log zerolog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		onChange: onChange,
		log:      log,
		fw:       fw,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Watch starts watching. It returns once the directory is registered;
// event handling runs in background goroutines until Close.
func (w *Watcher) Watch() error {
	if err := w.fw.Add(w.dir); err != nil {
		return err
	}
	go w.processEvents()
	go w.processPending()
	return nil
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.fw.Close()
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !isExportFile(ev.Name) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.log.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("export file changed")
			w.mu.Lock()
			w.dirty = true
			w.lastEv = time.Now()
			w.mu.Unlock()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watch error")
		}
	}
}

// processPending fires onChange once no further events have arrived for a
// full debounce window.
func (w *Watcher) processPending() {
	interval := w.debounce / 4
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.mu.Lock()
			fire := w.dirty && time.Since(w.lastEv) >= w.debounce
			if fire {
				w.dirty = false
			}
			w.mu.Unlock()
			if fire {
				w.onChange()
			}
		}
	}
}

func isExportFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".json")
}
