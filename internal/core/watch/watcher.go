package watch

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/huc-edu/insight-engine/internal/models"
)

// Enqueuer is the single entry point the watcher needs from the ingestion
// side. Duplicate notifications for the same path are fine; de-duplication
// lives in the queue manager.
type Enqueuer interface {
	Enqueue(path, source, category string)
}

// Watcher observes a directory tree recursively and forwards file creation
// and modification events into the ingestion queue.
type Watcher struct {
	root     string
	enqueuer Enqueuer
	category string
	logger   *slog.Logger

	fw   *fsnotify.Watcher
	done chan struct{}
}

func New(root string, enqueuer Enqueuer, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		root:     root,
		enqueuer: enqueuer,
		category: "Auto-Ingest",
		logger:   logger,
	}
}

// Start creates the watched directory if absent, registers the whole subtree
// and begins observing asynchronously. It returns once observation is live.
func (w *Watcher) Start() error {
	if err := os.MkdirAll(w.root, 0o755); err != nil {
		return fmt.Errorf("create watch dir: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	w.fw = fw
	w.done = make(chan struct{})

	// fsnotify is not recursive; register every existing directory.
	err = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("register watch tree: %w", err)
	}

	go w.loop()
	w.logger.Info("watching directory", "root", w.root)
	return nil
}

// Stop halts observation and blocks until the event goroutine has exited,
// so process shutdown is deterministic.
func (w *Watcher) Stop() {
	if w.fw == nil {
		return
	}
	_ = w.fw.Close()
	<-w.done
	w.logger.Info("stopped file watcher")
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	info, err := os.Stat(ev.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		// New subdirectory: extend the watch so files created inside it
		// are seen too.
		if ev.Op&fsnotify.Create != 0 {
			if err := w.fw.Add(ev.Name); err != nil {
				w.logger.Error("failed to watch new directory", "path", ev.Name, "error", err)
			}
		}
		return
	}
	w.logger.Info("file event", "path", ev.Name, "op", ev.Op.String())
	w.enqueuer.Enqueue(ev.Name, models.SourceWatchedFolder, w.category)
}
