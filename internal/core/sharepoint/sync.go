package sharepoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/huc-edu/insight-engine/internal/models"
)

// ErrSyncRunning is returned when a sync is requested while one is active.
var (
	ErrSyncRunning = errors.New("sync already in progress")
	ErrNoSite      = errors.New("no SharePoint site configured")
)

const maxConcurrentDownloads = 4

// SyncStatus is the polling snapshot for the SharePoint sync job.
type SyncStatus struct {
	Status    string `json:"status"` // idle | running | complete | error
	Message   string `json:"message"`
	DocsCount int    `json:"docs_count"`
}

// Enqueuer matches the ingestion queue manager.
type Enqueuer interface {
	Enqueue(path, source, category string)
}

// SyncJob runs one scrape-download-enqueue pass at a time and exposes its
// progress for polling clients.
type SyncJob struct {
	scraper  *Scraper
	enqueuer Enqueuer
	destDir  string
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	status  SyncStatus
}

func NewSyncJob(scraper *Scraper, enqueuer Enqueuer, destDir string, logger *slog.Logger) *SyncJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncJob{
		scraper:  scraper,
		enqueuer: enqueuer,
		destDir:  destDir,
		logger:   logger,
		status:   SyncStatus{Status: "idle"},
	}
}

// SetScraper swaps the scraper, used when the site URL is reconfigured at
// runtime. Refused while a sync is running.
func (j *SyncJob) SetScraper(s *Scraper) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		return ErrSyncRunning
	}
	j.scraper = s
	return nil
}

func (j *SyncJob) Status() SyncStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Start kicks off a background sync. It returns ErrSyncRunning when one is
// already active; otherwise it returns immediately and the job reports
// progress via Status.
func (j *SyncJob) Start(ctx context.Context) error {
	j.mu.Lock()
	if j.scraper == nil {
		j.mu.Unlock()
		return ErrNoSite
	}
	if j.running {
		j.mu.Unlock()
		return ErrSyncRunning
	}
	j.running = true
	j.status = SyncStatus{Status: "running", Message: "Starting sync..."}
	j.mu.Unlock()

	go j.run(ctx)
	return nil
}

func (j *SyncJob) run(ctx context.Context) {
	j.setMessage("Scraping documents...")

	links, err := j.scraper.ScrapeDocuments(ctx)
	if err != nil {
		j.fail(err)
		return
	}

	j.setMessage(fmt.Sprintf("Downloading %d documents...", len(links)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDownloads)
	for _, link := range links {
		g.Go(func() error {
			local, err := j.scraper.Download(gctx, link, j.destDir)
			if err != nil {
				// One bad download shouldn't abort the whole sync.
				j.logger.Error("sharepoint download failed", "url", link.URL, "error", err)
				return nil
			}
			j.enqueuer.Enqueue(local, models.SourceSharePoint, models.DefaultCategory)
			return nil
		})
	}
	_ = g.Wait()

	j.mu.Lock()
	j.status = SyncStatus{Status: "complete", Message: "Sync complete.", DocsCount: len(links)}
	j.running = false
	j.mu.Unlock()
	j.logger.Info("sharepoint sync complete", "documents", len(links))
}

func (j *SyncJob) setMessage(msg string) {
	j.mu.Lock()
	j.status.Message = msg
	j.mu.Unlock()
}

func (j *SyncJob) fail(err error) {
	j.logger.Error("sharepoint sync failed", "error", err)
	j.mu.Lock()
	j.status = SyncStatus{Status: "error", Message: fmt.Sprintf("Error: %v", err)}
	j.running = false
	j.mu.Unlock()
}
