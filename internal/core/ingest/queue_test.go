package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huc-edu/insight-engine/internal/models"
)

// testIngestor records every Ingest call and can be told to block or fail
// on specific paths.
type testIngestor struct {
	mu       sync.Mutex
	calls    []string
	failOn   map[string]bool
	blockOn  string
	release  chan struct{}
	started  chan struct{}
	startOne sync.Once
}

func newTestIngestor() *testIngestor {
	return &testIngestor{
		failOn:  make(map[string]bool),
		release: make(chan struct{}),
		started: make(chan struct{}),
	}
}

func (f *testIngestor) Ingest(_ context.Context, path, originalName, source, category string) (*models.Document, error) {
	f.mu.Lock()
	f.calls = append(f.calls, path)
	fail := f.failOn[path]
	block := f.blockOn == path
	f.mu.Unlock()

	if block {
		f.startOne.Do(func() { close(f.started) })
		<-f.release
	}
	if fail {
		return nil, errors.New("boom")
	}
	return &models.Document{FileName: originalName, Source: source, Category: category}, nil
}

func (f *testIngestor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *testIngestor) callOrder() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func waitForIdle(t *testing.T, m *Manager, want int) models.QueueStatus {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		st := m.Status()
		if !st.IsProcessing && st.ProcessedFiles+st.FailedFiles == want {
			return st
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("queue did not drain, status: %+v", m.Status())
	return models.QueueStatus{}
}

func TestEnqueueDuplicatePathCountedOnce(t *testing.T) {
	ing := newTestIngestor()
	ing.blockOn = "/tmp/first.pdf"
	m := NewManager(context.Background(), ing, nil)

	m.Enqueue("/tmp/first.pdf", models.SourceUpload, "General")
	<-ing.started // worker holds first.pdf, queue is otherwise empty

	m.Enqueue("/tmp/dup.pdf", models.SourceUpload, "General")
	m.Enqueue("/tmp/dup.pdf", models.SourceUpload, "General")

	st := m.Status()
	assert.Equal(t, 2, st.TotalFiles)

	close(ing.release)
	final := waitForIdle(t, m, 2)
	assert.Equal(t, 2, final.ProcessedFiles)
	assert.Equal(t, 0, final.FailedFiles)
	assert.Equal(t, 2, ing.callCount())
}

func TestSamePathMayBeReingestedAfterProcessing(t *testing.T) {
	ing := newTestIngestor()
	m := NewManager(context.Background(), ing, nil)

	m.Enqueue("/tmp/report.pdf", models.SourceUpload, "General")
	waitForIdle(t, m, 1)

	// the path left the pending set, so a fresh enqueue is a new task
	m.Enqueue("/tmp/report.pdf", models.SourceUpload, "General")
	final := waitForIdle(t, m, 2)

	assert.Equal(t, 2, final.TotalFiles)
	assert.Equal(t, 2, final.ProcessedFiles)
}

func TestConcurrentProducersSingleWorkerFIFO(t *testing.T) {
	ing := newTestIngestor()
	ing.blockOn = "/tmp/gate.txt"
	m := NewManager(context.Background(), ing, nil)

	// hold the worker on the first task so later enqueues pile up in order
	m.Enqueue("/tmp/gate.txt", models.SourceUpload, "General")
	<-ing.started

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			m.Enqueue(fmt.Sprintf("/tmp/file-%d.txt", n), models.SourceUpload, "General")
		}(i)
	}
	wg.Wait()
	close(ing.release)

	final := waitForIdle(t, m, 4)
	assert.Equal(t, 4, final.TotalFiles)
	assert.Equal(t, 4, final.ProcessedFiles)
	assert.Equal(t, 0, final.FailedFiles)
	assert.False(t, final.IsProcessing)
	assert.Empty(t, final.CurrentFile)

	order := ing.callOrder()
	require.Len(t, order, 4)
	assert.Equal(t, "/tmp/gate.txt", order[0])
	// each producer enqueued exactly once; all three ran after the gate
	assert.ElementsMatch(t, order[1:], []string{"/tmp/file-0.txt", "/tmp/file-1.txt", "/tmp/file-2.txt"})
}

func TestEnqueueWhileProcessingReusesWorker(t *testing.T) {
	ing := newTestIngestor()
	ing.blockOn = "/tmp/slow.pdf"
	m := NewManager(context.Background(), ing, nil)

	m.Enqueue("/tmp/slow.pdf", models.SourceUpload, "General")
	<-ing.started

	st := m.Status()
	assert.True(t, st.IsProcessing)
	assert.Equal(t, "slow.pdf", st.CurrentFile)

	m.Enqueue("/tmp/next.pdf", models.SourceUpload, "General")

	// still the in-flight file; the new task waits its turn
	st = m.Status()
	assert.Equal(t, "slow.pdf", st.CurrentFile)
	assert.Equal(t, 2, st.TotalFiles)

	close(ing.release)
	final := waitForIdle(t, m, 2)
	assert.Equal(t, []string{"/tmp/slow.pdf", "/tmp/next.pdf"}, ing.callOrder())
	assert.Equal(t, 2, final.ProcessedFiles)
}

func TestFailureDoesNotStopQueue(t *testing.T) {
	ing := newTestIngestor()
	ing.failOn["/tmp/bad.docx"] = true
	ing.blockOn = "/tmp/gate.txt"
	m := NewManager(context.Background(), ing, nil)

	m.Enqueue("/tmp/gate.txt", models.SourceUpload, "General")
	<-ing.started
	m.Enqueue("/tmp/bad.docx", models.SourceUpload, "General")
	m.Enqueue("/tmp/good.txt", models.SourceUpload, "General")
	close(ing.release)

	final := waitForIdle(t, m, 3)
	assert.Equal(t, 3, final.TotalFiles)
	assert.Equal(t, 2, final.ProcessedFiles)
	assert.Equal(t, 1, final.FailedFiles)
	assert.Equal(t, []string{"/tmp/gate.txt", "/tmp/bad.docx", "/tmp/good.txt"}, ing.callOrder())
}

func TestStatusIsProcessingMatchesCurrentFile(t *testing.T) {
	ing := newTestIngestor()
	ing.blockOn = "/tmp/held.pdf"
	m := NewManager(context.Background(), ing, nil)

	idle := m.Status()
	assert.False(t, idle.IsProcessing)
	assert.Empty(t, idle.CurrentFile)

	m.Enqueue("/tmp/held.pdf", models.SourceUpload, "General")
	<-ing.started

	busy := m.Status()
	assert.True(t, busy.IsProcessing)
	assert.Equal(t, "held.pdf", busy.CurrentFile)

	close(ing.release)
	final := waitForIdle(t, m, 1)
	assert.False(t, final.IsProcessing)
	assert.Empty(t, final.CurrentFile)
}

func TestEnqueueDefaultsSourceAndCategory(t *testing.T) {
	ing := newTestIngestor()
	done := make(chan models.Document, 1)
	m := NewManager(context.Background(), &captureIngestor{inner: ing, done: done}, nil)

	m.Enqueue("/tmp/plain.txt", "", "")

	select {
	case doc := <-done:
		assert.Equal(t, models.SourceWatchedFolder, doc.Source)
		assert.Equal(t, models.DefaultCategory, doc.Category)
	case <-time.After(5 * time.Second):
		t.Fatal("task never processed")
	}
}

type captureIngestor struct {
	inner *testIngestor
	done  chan models.Document
}

func (c *captureIngestor) Ingest(ctx context.Context, path, originalName, source, category string) (*models.Document, error) {
	doc, err := c.inner.Ingest(ctx, path, originalName, source, category)
	if doc != nil {
		c.done <- *doc
	}
	return doc, err
}
