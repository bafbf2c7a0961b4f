package ingest

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/huc-edu/insight-engine/internal/models"
)

// FileIngestor is what the queue worker drives; satisfied by *Pipeline.
type FileIngestor interface {
	Ingest(ctx context.Context, path, originalName, source, category string) (*models.Document, error)
}

// Task is one pending ingestion request. Tasks exist only in memory for the
// duration of the queue; producers never learn the eventual outcome and must
// poll Status instead.
type Task struct {
	Path     string
	Source   string
	Category string
}

// Manager serializes concurrent ingestion requests from any number of
// producers (HTTP upload, filesystem watcher, Drive download, SharePoint
// sync) into a single background worker.
//
// The mutex covers the pending list, the de-duplication set, the counters
// and the worker-start decision, so two concurrent Enqueue calls can neither
// double-add a path nor start two workers.
type Manager struct {
	ingestor FileIngestor
	logger   *slog.Logger
	ctx      context.Context

	mu      sync.Mutex
	queue   []Task
	pending map[string]struct{}
	running bool
	status  models.QueueStatus
}

// NewManager builds a queue manager. ctx bounds the lifetime of worker runs;
// cancelling it lets the in-flight file finish its pipeline calls fail fast
// while the queue drains.
func NewManager(ctx context.Context, ingestor FileIngestor, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		ingestor: ingestor,
		logger:   logger,
		ctx:      ctx,
		pending:  make(map[string]struct{}),
	}
}

// Enqueue adds a file path to the pending queue unless that exact path is
// already waiting. It is fire-and-forget: the call returns immediately and
// never reports the processing outcome. If no worker is running, one is
// started.
func (m *Manager) Enqueue(path, source, category string) {
	if source == "" {
		source = models.SourceWatchedFolder
	}
	if category == "" {
		category = models.DefaultCategory
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, dup := m.pending[path]; dup {
		return
	}
	m.pending[path] = struct{}{}
	m.queue = append(m.queue, Task{Path: path, Source: source, Category: category})
	m.status.TotalFiles++
	m.logger.Info("queued for ingestion", "path", path, "queue_size", len(m.queue))

	if !m.running {
		m.running = true
		go m.run()
	}
}

// Status returns an immutable snapshot of the queue counters. It never
// blocks on the worker.
func (m *Manager) Status() models.QueueStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// run is the single worker loop. At most one instance is alive per Manager:
// it is only started under the mutex when running is false, and it flips
// running back to false under the same mutex just before exiting.
func (m *Manager) run() {
	for {
		m.mu.Lock()
		if len(m.queue) == 0 {
			m.status.CurrentFile = ""
			m.status.IsProcessing = false
			m.running = false
			m.mu.Unlock()
			m.logger.Info("ingestion queue empty")
			return
		}
		task := m.queue[0]
		m.queue = m.queue[1:]
		delete(m.pending, task.Path)
		m.status.CurrentFile = filepath.Base(task.Path)
		m.status.IsProcessing = true
		m.mu.Unlock()

		m.logger.Info("processing", "path", task.Path, "source", task.Source)
		_, err := m.ingestor.Ingest(m.ctx, task.Path, filepath.Base(task.Path), task.Source, task.Category)

		m.mu.Lock()
		if err != nil {
			// One file's failure must not stop the queue.
			m.status.FailedFiles++
			m.logger.Error("ingestion failed", "path", task.Path, "error", err)
		} else {
			m.status.ProcessedFiles++
		}
		m.mu.Unlock()
	}
}
