// Package watcher owns the filesystem subscription for the serving
// root. Raw events are individually delayed by a quiescence interval,
// classified, and broadcast; watch transport errors conservatively
// broadcast a reload and never stop the watch loop.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/liveserve/liveserve/internal/live"
	"github.com/liveserve/liveserve/internal/logging"
)

// DefaultDebounce absorbs editor save patterns (temp-file write,
// rename, metadata touch) that emit several raw events for one edit.
const DefaultDebounce = 120 * time.Millisecond

// Watcher subscribes to all filesystem activity under the base
// directory and feeds classified messages into the broadcaster. The
// fsnotify handle is exclusively owned by the watch goroutine.
type Watcher struct {
	fsw         *fsnotify.Watcher
	classifier  *live.Classifier
	broadcaster *live.Broadcaster
	logger      logging.Logger
	debounce    time.Duration
}

// New creates a watcher recursively subscribed to baseDir. A
// subscription failure here is returned to the caller and is
// startup-fatal: the server must not run with a dead watcher.
func New(baseDir string, classifier *live.Classifier, broadcaster *live.Broadcaster, logger logging.Logger, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		fsw:         fsw,
		classifier:  classifier,
		broadcaster: broadcaster,
		logger:      logger.WithComponent("watcher"),
		debounce:    debounce,
	}

	if err := w.addRecursive(baseDir); err != nil {
		fsw.Close()
		return nil, err
	}

	return w, nil
}

// addRecursive registers baseDir and every directory below it.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

// Start launches the watch loop. It returns once the loop goroutine is
// running; the loop exits when ctx is cancelled or the watcher closed.
func (w *Watcher) Start(ctx context.Context) {
	go w.watchLoop(ctx)
}

// Close releases the filesystem subscription.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Assume something changed rather than dropping the error.
			w.logger.Error(ctx, err, "watch error, broadcasting reload")
			w.broadcaster.Broadcast(live.Reload())
		}
	}
}

// handleEvent schedules one raw event for classification after the
// debounce interval. Each event is delayed independently; there is no
// global coalescing window across files.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.fsw.Add(event.Name); err != nil {
				w.logger.Warn(ctx, err, "failed to watch new directory", "path", event.Name)
			}
		}
	}

	raw := live.RawEvent{
		Kind:  mapOp(event.Op),
		Paths: []string{event.Name},
	}

	time.AfterFunc(w.debounce, func() {
		for _, msg := range w.classifier.Classify(raw) {
			w.broadcaster.Broadcast(msg)
		}
	})
}

// mapOp maps fsnotify operations onto classifier event kinds. fsnotify
// reports renames against the old name (the new name arrives as a
// separate create), so Rename maps to the rename-from half of a move.
func mapOp(op fsnotify.Op) live.EventKind {
	switch {
	case op.Has(fsnotify.Create):
		return live.KindCreate
	case op.Has(fsnotify.Write):
		return live.KindModifyData
	case op.Has(fsnotify.Remove):
		return live.KindRemove
	case op.Has(fsnotify.Rename):
		return live.KindRenameFrom
	case op.Has(fsnotify.Chmod):
		return live.KindModifyMetadata
	default:
		return live.KindAny
	}
}
