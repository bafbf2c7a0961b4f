package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/huc-edu/insight-engine/internal/config"
	"github.com/huc-edu/insight-engine/internal/core"
	"github.com/huc-edu/insight-engine/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

var _ core.DbClient = (*DatabaseClient)(nil)

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`
	_, err := c.db.ExecContext(ctx, q, user.ID, user.Email, user.PasswordHash, user.CreatedAt)
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, email, password_hash, created_at
		FROM users WHERE email = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *DatabaseClient) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	const q = `
		INSERT INTO documents
			(id, file_name, file_path, file_type, source, category, summary, archive_url, vector_id, created_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		doc.ID, doc.FileName, doc.FilePath, doc.FileType, doc.Source, doc.Category,
		doc.Summary, nullable(doc.ArchiveURL), doc.VectorID, doc.CreatedAt)
	return err
}

func (c *DatabaseClient) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	const q = `
		SELECT id, file_name, file_path, file_type, source, category,
		       COALESCE(summary, ''), COALESCE(archive_url, ''), COALESCE(vector_id, ''), created_at
		FROM documents
		WHERE id = $1
	`
	var d models.Document
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.FileName, &d.FilePath, &d.FileType, &d.Source, &d.Category,
		&d.Summary, &d.ArchiveURL, &d.VectorID, &d.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDocuments returns the newest documents first. limit <= 0 means all.
func (c *DatabaseClient) ListDocuments(ctx context.Context, limit int) ([]models.Document, error) {
	q := `
		SELECT id, file_name, file_path, file_type, source, category,
		       COALESCE(summary, ''), COALESCE(archive_url, ''), COALESCE(vector_id, ''), created_at
		FROM documents
		ORDER BY created_at DESC
	`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(
			&d.ID, &d.FileName, &d.FilePath, &d.FileType, &d.Source, &d.Category,
			&d.Summary, &d.ArchiveURL, &d.VectorID, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdateDocumentSummary(ctx context.Context, id string, summary string) error {
	const q = `
		UPDATE documents
		SET summary = $2
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, summary)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return nil
}

func (c *DatabaseClient) CountDocumentsByType(ctx context.Context) (map[string]int, error) {
	const q = `
		SELECT file_type, COUNT(*)
		FROM documents
		GROUP BY file_type
	`
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		out[t] = n
	}
	return out, rows.Err()
}

// InsertDocumentChunks inserts chunks in a single transaction.
func (c *DatabaseClient) InsertDocumentChunks(ctx context.Context, chunks []models.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO document_chunks
			(id, document_id, position, text, embedding, file_name, source, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, now()))
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		if _, err := stmt.ExecContext(ctx,
			ch.ID, ch.DocumentID, ch.Position, ch.Text, pgvector.NewVector(ch.Embedding),
			ch.FileName, ch.Source, ch.Category, ch.CreatedAt,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert chunk %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// SearchChunks finds the top-k chunks nearest to the query embedding,
// optionally filtered by category.
func (c *DatabaseClient) SearchChunks(ctx context.Context, queryVec []float32, limit int, category string) ([]models.DocumentChunk, error) {
	vec := pgvector.NewVector(queryVec)

	q := `
		SELECT id, document_id, position, text, embedding, file_name, source, category, created_at
		FROM document_chunks
	`
	args := []any{vec, limit}
	if category != "" {
		q += ` WHERE category = $3`
		args = append(args, category)
	}
	q += `
		ORDER BY embedding <-> $1
		LIMIT $2
	`

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DocumentChunk
	for rows.Next() {
		var (
			ch  models.DocumentChunk
			emb pgvector.Vector
		)
		if err := rows.Scan(&ch.ID, &ch.DocumentID, &ch.Position, &ch.Text, &emb,
			&ch.FileName, &ch.Source, &ch.Category, &ch.CreatedAt); err != nil {
			return nil, err
		}
		ch.Embedding = emb.Slice()
		out = append(out, ch)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) ListFolders(ctx context.Context, category string) ([]models.Folder, error) {
	const q = `
		SELECT id, name, category
		FROM folders
		WHERE category = $1
		ORDER BY id
	`
	rows, err := c.db.QueryContext(ctx, q, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Folder
	for rows.Next() {
		var f models.Folder
		if err := rows.Scan(&f.ID, &f.Name, &f.Category); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) CreateFolder(ctx context.Context, folder *models.Folder) error {
	if folder == nil {
		return errors.New("nil folder")
	}
	const q = `
		INSERT INTO folders (name, category)
		VALUES ($1, $2)
		RETURNING id
	`
	return c.db.QueryRowContext(ctx, q, folder.Name, folder.Category).Scan(&folder.ID)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
