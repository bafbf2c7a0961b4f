package models

import (
	"time"
)

// Source values recorded on documents and ingestion tasks.
const (
	SourceUpload        = "upload"
	SourceWatchedFolder = "watched_folder"
	SourceGoogleDrive   = "google_drive"
	SourceSharePoint    = "sharepoint"
)

// DefaultCategory is applied when a producer doesn't name one.
const DefaultCategory = "General"

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Document is the durable metadata row for one ingested file.
// Summary starts as a placeholder and is updated in place once the
// LLM summarization step completes.
type Document struct {
	ID         string    `db:"id" json:"id"`
	FileName   string    `db:"file_name" json:"file_name"`
	FilePath   string    `db:"file_path" json:"file_path"`
	FileType   string    `db:"file_type" json:"file_type"` // pdf, docx, xlsx, ...
	Source     string    `db:"source" json:"source"`       // upload | watched_folder | google_drive | sharepoint
	Category   string    `db:"category" json:"category"`
	Summary    string    `db:"summary" json:"summary"`
	ArchiveURL string    `db:"archive_url" json:"archive_url,omitempty"` // S3 URL when archiving is enabled
	VectorID   string    `db:"vector_id" json:"vector_id"`               // chunk grouping key in the vector table
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// DocumentChunk is one embedded slice of a document's extracted text.
// Each chunk carries a copy of the parent document's metadata so search
// results are attributable without a join back to the documents table.
type DocumentChunk struct {
	ID         string    `db:"id" json:"id"`
	DocumentID string    `db:"document_id" json:"document_id"`
	Position   int       `db:"position" json:"position"`
	Text       string    `db:"text" json:"text"`
	Embedding  []float32 `db:"embedding" json:"-"`
	FileName   string    `db:"file_name" json:"file_name"`
	Source     string    `db:"source" json:"source"`
	Category   string    `db:"category" json:"category"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Folder groups documents inside an accreditation category.
type Folder struct {
	ID       int    `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Category string `db:"category" json:"category"`
}

// QueueStatus is the snapshot returned by the ingestion status endpoint.
type QueueStatus struct {
	TotalFiles     int    `json:"total_files"`
	ProcessedFiles int    `json:"processed_files"`
	FailedFiles    int    `json:"failed_files"`
	CurrentFile    string `json:"current_file"`
	IsProcessing   bool   `json:"is_processing"`
}
