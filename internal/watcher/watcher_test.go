package watcher

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liveserve/liveserve/internal/live"
	"github.com/liveserve/liveserve/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.LevelError,
		Format: "text",
		Output: io.Discard,
	})
}

func newPipeline(t *testing.T, diffMode bool) (string, *live.Broadcaster, *Watcher) {
	t.Helper()

	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(base, "styles"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "styles", "app.css"), []byte("body{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(base, "index.html"), []byte("<html></html>"), 0o644))

	broadcaster := live.NewBroadcaster(live.DefaultBacklog)
	classifier := &live.Classifier{BaseDir: base, DiffMode: diffMode}

	w, err := New(base, classifier, broadcaster, testLogger(), 20*time.Millisecond)
	require.NoError(t, err)

	t.Cleanup(func() {
		w.Close()
		broadcaster.Close()
	})

	return base, broadcaster, w
}

// waitFor reads messages until one satisfies the predicate.
func waitFor(t *testing.T, sub *live.Subscription, timeout time.Duration, match func(live.Message) bool) live.Message {
	t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case msg, ok := <-sub.C():
			require.True(t, ok, "subscription closed while waiting")
			if match(msg) {
				return msg
			}
		case <-deadline:
			t.Fatal("timed out waiting for message")
		}
	}
}

func TestWatcher_FullReloadModeBroadcastsReload(t *testing.T) {
	base, broadcaster, w := newPipeline(t, false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	sub := broadcaster.Subscribe()
	defer sub.Close()

	require.NoError(t, os.WriteFile(filepath.Join(base, "styles", "app.css"), []byte("body{color:red}"), 0o644))

	msg := waitFor(t, sub, 5*time.Second, func(m live.Message) bool {
		return m.Type == live.MessageReload
	})
	assert.Equal(t, live.Reload(), msg)
}

func TestWatcher_DiffModeBroadcastsCSSDiff(t *testing.T) {
	base, broadcaster, w := newPipeline(t, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	sub := broadcaster.Subscribe()
	defer sub.Close()

	require.NoError(t, os.WriteFile(filepath.Join(base, "styles", "app.css"), []byte("body{color:red}"), 0o644))

	msg := waitFor(t, sub, 5*time.Second, func(m live.Message) bool {
		return m.Type == live.MessageDiff
	})
	assert.Equal(t, live.Diff("/styles/app.css", live.ResourceCSS), msg)
}

func TestWatcher_DiffModeIgnoresUnclassifiableWrites(t *testing.T) {
	base, broadcaster, w := newPipeline(t, true)
	require.NoError(t, os.WriteFile(filepath.Join(base, "app.js"), []byte("//"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	sub := broadcaster.Subscribe()
	defer sub.Close()

	require.NoError(t, os.WriteFile(filepath.Join(base, "app.js"), []byte("// changed"), 0o644))

	select {
	case msg := <-sub.C():
		t.Fatalf("unexpected message %+v", msg)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_NewDirectoriesAreWatched(t *testing.T) {
	base, broadcaster, w := newPipeline(t, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	sub := broadcaster.Subscribe()
	defer sub.Close()

	nested := filepath.Join(base, "pages")
	require.NoError(t, os.Mkdir(nested, 0o755))

	// Give the watch loop a moment to register the new directory.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(nested, "index.html"), []byte("<html></html>"), 0o644))

	waitFor(t, sub, 5*time.Second, func(m live.Message) bool {
		return m == live.Diff("/pages/", live.ResourceHTML)
	})
}

func TestWatcher_RemovalFallsBackToReload(t *testing.T) {
	base, broadcaster, w := newPipeline(t, true)
	target := filepath.Join(base, "app.js")
	require.NoError(t, os.WriteFile(target, []byte("//"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	sub := broadcaster.Subscribe()
	defer sub.Close()

	require.NoError(t, os.Remove(target))

	waitFor(t, sub, 5*time.Second, func(m live.Message) bool {
		return m.Type == live.MessageReload
	})
}

func TestWatcher_TransportErrorBroadcastsReloadAndKeepsWatching(t *testing.T) {
	base, broadcaster, w := newPipeline(t, false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	sub := broadcaster.Subscribe()
	defer sub.Close()

	// A transport error means events may have been lost, so the loop
	// assumes a change and must keep running afterwards.
	w.fsw.Errors <- errors.New("event queue overflowed")

	msg := waitFor(t, sub, 5*time.Second, func(m live.Message) bool {
		return m.Type == live.MessageReload
	})
	assert.Equal(t, live.Reload(), msg)

	require.NoError(t, os.WriteFile(filepath.Join(base, "styles", "app.css"), []byte("body{color:red}"), 0o644))

	waitFor(t, sub, 5*time.Second, func(m live.Message) bool {
		return m.Type == live.MessageReload
	})
}

func TestMapOp(t *testing.T) {
	assert.Equal(t, live.KindCreate, mapOp(fsnotify.Create))
	assert.Equal(t, live.KindModifyData, mapOp(fsnotify.Write))
	assert.Equal(t, live.KindRemove, mapOp(fsnotify.Remove))
	assert.Equal(t, live.KindRenameFrom, mapOp(fsnotify.Rename))
	assert.Equal(t, live.KindModifyMetadata, mapOp(fsnotify.Chmod))

	// Rename carries the old path on fsnotify; combined ops keep the
	// create/write priority.
	assert.Equal(t, live.KindCreate, mapOp(fsnotify.Create|fsnotify.Write))
}
