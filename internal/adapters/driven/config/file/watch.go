package file

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/wikiprox/internal/logger"
)

// Watcher reloads a ConfigStore when its file changes on disk.
type Watcher struct {
	store   *ConfigStore
	watcher *fsnotify.Watcher
}

// NewWatcher starts watching the store's directory. The directory is watched
// rather than the file so editors that replace the file are still seen.
func NewWatcher(store *ConfigStore) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create config watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(store.Path())); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(store.Path()), err)
	}
	return &Watcher{store: store, watcher: w}, nil
}

// Run reloads the store on every write to the config file and then calls
// onChange. It returns when ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context, onChange func()) {
	name := filepath.Clean(w.store.Path())

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			logger.Debug("config file modified, reloading")
			if err := w.store.Load(); err != nil {
				logger.Warn("failed to reload config: %v", err)
				continue
			}
			if onChange != nil {
				onChange()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("config watcher error: %v", err)
		}
	}
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
