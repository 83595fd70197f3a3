package rag

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	logx "github.com/khttp/DSPyBridge/pkg/logger"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher reloads the store when *.txt files in the docs directory change.
// Events are debounced so a burst of writes triggers a single reload.
type Watcher struct {
	store    *Store
	fw       *fsnotify.Watcher
	debounce time.Duration
	done     chan struct{}
}

// NewWatcher starts watching the store's directory. Close releases the
// underlying watcher and stops the event loop.
func NewWatcher(store *Store, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(store.Dir()); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		store:    store,
		fw:       fw,
		debounce: debounce,
		done:     make(chan struct{}),
	}
	go w.run()

	logx.Info().Str("dir", store.Dir()).Msg("watching docs directory for changes")
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fw.Close()
}

func (w *Watcher) run() {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Ext(event.Name) != ".txt" {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-fire:
			timer = nil
			fire = nil
			if _, err := w.store.Reload(context.Background()); err != nil {
				logx.Warn().Err(err).Msg("auto reload after docs change failed")
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			logx.Warn().Err(err).Msg("docs watcher error")
		}
	}
}
