package core

import (
	"context"

	"github.com/huc-edu/insight-engine/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	CreateDocument(ctx context.Context, doc *models.Document) error
	GetDocumentByID(ctx context.Context, id string) (*models.Document, error)
	ListDocuments(ctx context.Context, limit int) ([]models.Document, error)
	UpdateDocumentSummary(ctx context.Context, id string, summary string) error
	CountDocumentsByType(ctx context.Context) (map[string]int, error)

	InsertDocumentChunks(ctx context.Context, chunks []models.DocumentChunk) error
	SearchChunks(ctx context.Context, queryVec []float32, limit int, category string) ([]models.DocumentChunk, error)

	ListFolders(ctx context.Context, category string) ([]models.Folder, error)
	CreateFolder(ctx context.Context, folder *models.Folder) error

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
// Abstract so AWS can be replaced with MinIO, GCP, etc.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
	DeleteFile(ctx context.Context, bucket, key string) error
}
