package csvstore

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher evicts cached corpus tables as soon as their files change on disk.
type Watcher struct {
	store   *CorpusStore
	fsw     *fsnotify.Watcher
	logger  *zap.Logger
	evicted func(path string)
}

// NewWatcher starts watching the store's data directory. Call Run to process
// events and Close to release the watch.
func NewWatcher(store *CorpusStore, logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(store.DataDir()); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", store.DataDir(), err)
	}
	return &Watcher{store: store, fsw: fsw, logger: logger}, nil
}

// Run blocks until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
				!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			path := filepath.Clean(ev.Name)
			w.store.Invalidate(path)
			w.logger.Debug("corpus table changed", zap.String("path", path), zap.String("op", ev.Op.String()))
			if w.evicted != nil {
				w.evicted(path)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("corpus watcher error", zap.Error(err))
		}
	}
}

// Close stops the underlying watch.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
