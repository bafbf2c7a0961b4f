package watch

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEnqueuer struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingEnqueuer) Enqueue(path, source, category string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recordingEnqueuer) wait(t *testing.T, path string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		for _, p := range r.paths {
			if p == path {
				r.mu.Unlock()
				return
			}
		}
		r.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("path %s never enqueued", path)
}

func TestWatcherEnqueuesNewFile(t *testing.T) {
	root := t.TempDir()
	enq := &recordingEnqueuer{}
	w := New(root, enq, nil)
	require.NoError(t, w.Start())
	defer w.Stop()

	target := filepath.Join(root, "dropped.pdf")
	require.NoError(t, os.WriteFile(target, []byte("content"), 0o644))

	enq.wait(t, target)
}

func TestWatcherCreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "not", "yet", "there")
	w := New(root, &recordingEnqueuer{}, nil)
	require.NoError(t, w.Start())
	defer w.Stop()

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWatcherPicksUpNewSubdirectory(t *testing.T) {
	root := t.TempDir()
	enq := &recordingEnqueuer{}
	w := New(root, enq, nil)
	require.NoError(t, w.Start())
	defer w.Stop()

	sub := filepath.Join(root, "incoming")
	require.NoError(t, os.Mkdir(sub, 0o755))
	// give the watcher a beat to register the new directory
	time.Sleep(100 * time.Millisecond)

	target := filepath.Join(sub, "nested.txt")
	require.NoError(t, os.WriteFile(target, []byte("content"), 0o644))

	enq.wait(t, target)
}

func TestWatcherStopJoins(t *testing.T) {
	root := t.TempDir()
	w := New(root, &recordingEnqueuer{}, nil)
	require.NoError(t, w.Start())

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestWatcherStopWithoutStart(t *testing.T) {
	w := New(t.TempDir(), &recordingEnqueuer{}, nil)
	w.Stop() // no-op, must not panic or block
}
