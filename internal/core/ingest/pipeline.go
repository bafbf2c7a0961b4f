package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/huc-edu/insight-engine/internal/core"
	"github.com/huc-edu/insight-engine/internal/core/extract"
	"github.com/huc-edu/insight-engine/internal/models"
)

// ErrNoContent is returned when a file yields no extractable text. The task
// is counted as failed and no record or vector write happens.
var ErrNoContent = errors.New("no extractable content")

// SummaryPlaceholder is the summary a document carries until the background
// summarization step replaces it.
const SummaryPlaceholder = "AI summary is being generated..."

// Summarizer produces a short text summary of document content.
type Summarizer interface {
	Summarize(ctx context.Context, content string) (string, error)
}

// Config tunes the ingestion pipeline.
//
// ChunkSize:       target chunk length in runes.
// ChunkOverlap:    runes carried over between consecutive chunks.
// SummaryMaxChars: how much of the extracted text is handed to the LLM.
type Config struct {
	ChunkSize       int
	ChunkOverlap    int
	SummaryMaxChars int
}

func DefaultConfig() *Config {
	return &Config{ChunkSize: 1000, ChunkOverlap: 200, SummaryMaxChars: 4000}
}

// Pipeline runs the extract → chunk → embed → persist → summarize sequence
// for one file at a time. The queue manager above it guarantees only one
// invocation is active per process.
type Pipeline struct {
	db         core.DbClient
	embedder   core.EmbeddingProvider
	extractor  core.TextExtractor
	summarizer Summarizer
	archiver   core.ObjectClient // nil disables archiving
	bucket     string
	cfg        *Config
	logger     *slog.Logger
}

func NewPipeline(db core.DbClient, emb core.EmbeddingProvider, ext core.TextExtractor, sum Summarizer, cfg *Config, logger *slog.Logger) *Pipeline {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{db: db, embedder: emb, extractor: ext, summarizer: sum, cfg: cfg, logger: logger}
}

// WithArchiver enables best-effort mirroring of raw files into object storage.
func (p *Pipeline) WithArchiver(obj core.ObjectClient, bucket string) *Pipeline {
	p.archiver = obj
	p.bucket = bucket
	return p
}

// Ingest processes a single file end to end and returns the created document
// record. On empty content it returns ErrNoContent and writes nothing.
// A summarization failure leaves the placeholder summary in place and does
// not fail the task.
func (p *Pipeline) Ingest(ctx context.Context, path, originalName, source, category string) (*models.Document, error) {
	fileType := extract.DetectFileType(originalName)
	text := p.extractor.Extract(path, fileType)
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoContent
	}

	docID := uuid.NewString()
	now := time.Now().UTC()

	chunks := ChunkText(text, p.cfg.ChunkSize, p.cfg.ChunkOverlap)
	vecs, err := p.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vecs) != len(chunks) {
		return nil, fmt.Errorf("embed size mismatch: got %d want %d", len(vecs), len(chunks))
	}

	rows := make([]models.DocumentChunk, len(chunks))
	for i := range chunks {
		rows[i] = models.DocumentChunk{
			ID:         uuid.NewString(),
			DocumentID: docID,
			Position:   i,
			Text:       chunks[i],
			Embedding:  vecs[i],
			FileName:   originalName,
			Source:     source,
			Category:   category,
			CreatedAt:  now,
		}
	}
	if err := p.db.InsertDocumentChunks(ctx, rows); err != nil {
		return nil, fmt.Errorf("insert chunks: %w", err)
	}

	doc := &models.Document{
		ID:         docID,
		FileName:   originalName,
		FilePath:   path,
		FileType:   fileType,
		Source:     source,
		Category:   category,
		Summary:    SummaryPlaceholder,
		ArchiveURL: p.archive(ctx, path, originalName, docID),
		VectorID:   docID,
		CreatedAt:  now,
	}
	if err := p.db.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}

	p.summarizeAndUpdate(ctx, doc, text)
	return doc, nil
}

// summarizeAndUpdate is the second phase of the two-phase write: the record
// already exists with a placeholder, so any failure here is logged and
// leaves steps before it intact.
func (p *Pipeline) summarizeAndUpdate(ctx context.Context, doc *models.Document, text string) {
	if p.summarizer == nil {
		return
	}
	content := text
	if len(content) > p.cfg.SummaryMaxChars {
		content = content[:p.cfg.SummaryMaxChars]
	}
	summary, err := p.summarizer.Summarize(ctx, content)
	if err != nil {
		p.logger.Error("summarization failed, keeping placeholder", "document", doc.ID, "error", err)
		return
	}
	if err := p.db.UpdateDocumentSummary(ctx, doc.ID, summary); err != nil {
		p.logger.Error("summary update failed, keeping placeholder", "document", doc.ID, "error", err)
		return
	}
	doc.Summary = summary
}

// archive mirrors the raw file into object storage when configured.
// Failures are logged and never fail the task.
func (p *Pipeline) archive(ctx context.Context, path, originalName, docID string) string {
	if p.archiver == nil {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		p.logger.Error("archive read failed", "path", path, "error", err)
		return ""
	}
	key := fmt.Sprintf("archive/%s/%s", docID, originalName)
	url, err := p.archiver.UploadFile(ctx, p.bucket, key, data, "application/octet-stream")
	if err != nil {
		p.logger.Error("archive upload failed", "path", path, "error", err)
		return ""
	}
	return url
}
