// Package docstore persists document records in SQLite.
package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/korventis/sitedocs/internal/core"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// ErrNotFound is returned when a requested document doesn't exist.
var ErrNotFound = errors.New("document not found")

var _ core.DocumentStore = (*SQLiteStore)(nil)

// SQLiteStore implements core.DocumentStore on a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	title          TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	doc_type       TEXT NOT NULL,
	file_name      TEXT NOT NULL,
	file_path      TEXT NOT NULL,
	mime_type      TEXT NOT NULL DEFAULT '',
	file_size      INTEGER NOT NULL DEFAULT 0,
	extracted_text TEXT NOT NULL DEFAULT '',
	project_id     INTEGER NOT NULL DEFAULT 0,
	project_name   TEXT NOT NULL DEFAULT '',
	uploaded_at    TIMESTAMP NOT NULL,
	updated_at     TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_type ON documents(doc_type);
CREATE INDEX IF NOT EXISTS idx_documents_project ON documents(project_id);
`

// New opens (or creates) the database at dbPath and ensures the schema.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL for concurrent readers; SQLite still wants a single writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const documentColumns = `id, title, description, doc_type, file_name, file_path,
	mime_type, file_size, extracted_text, project_id, project_name, uploaded_at, updated_at`

// Save inserts a new document and fills in its generated id and
// timestamps.
func (s *SQLiteStore) Save(ctx context.Context, doc *core.Document) error {
	now := time.Now().UTC()
	doc.UploadedAt = now
	doc.UpdatedAt = now

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (title, description, doc_type, file_name, file_path,
			mime_type, file_size, extracted_text, project_id, project_name, uploaded_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.Title, doc.Description, string(doc.Type), doc.FileName, doc.FilePath,
		doc.MimeType, doc.FileSize, doc.ExtractedText, doc.ProjectID, doc.ProjectName,
		doc.UploadedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted id: %w", err)
	}
	doc.ID = id
	return nil
}

// Get loads one document by id.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (*core.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document %d: %w", id, err)
	}
	return doc, nil
}

// List returns all documents, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]core.Document, error) {
	return s.query(ctx,
		`SELECT `+documentColumns+` FROM documents ORDER BY uploaded_at DESC`)
}

// ListByType returns documents of one type, newest first.
func (s *SQLiteStore) ListByType(ctx context.Context, t core.DocumentType) ([]core.Document, error) {
	return s.query(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE doc_type = ? ORDER BY uploaded_at DESC`,
		string(t))
}

// ListByProject returns documents attached to one project, newest first.
func (s *SQLiteStore) ListByProject(ctx context.Context, projectID int64) ([]core.Document, error) {
	return s.query(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE project_id = ? ORDER BY uploaded_at DESC`,
		projectID)
}

// SearchTitle returns documents whose title contains the query,
// case-insensitively for ASCII.
func (s *SQLiteStore) SearchTitle(ctx context.Context, query string) ([]core.Document, error) {
	return s.query(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE title LIKE ? ORDER BY uploaded_at DESC`,
		"%"+query+"%")
}

// Update rewrites the mutable fields of a document record.
func (s *SQLiteStore) Update(ctx context.Context, doc *core.Document) error {
	doc.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET title = ?, description = ?, doc_type = ?,
			extracted_text = ?, project_id = ?, project_name = ?, updated_at = ?
		WHERE id = ?`,
		doc.Title, doc.Description, string(doc.Type),
		doc.ExtractedText, doc.ProjectID, doc.ProjectName, doc.UpdatedAt,
		doc.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update document %d: %w", doc.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a document record.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]core.Document, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []core.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanDocument(row scannable) (*core.Document, error) {
	var doc core.Document
	var docType string
	err := row.Scan(
		&doc.ID, &doc.Title, &doc.Description, &docType, &doc.FileName, &doc.FilePath,
		&doc.MimeType, &doc.FileSize, &doc.ExtractedText, &doc.ProjectID, &doc.ProjectName,
		&doc.UploadedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.Type = core.DocumentType(docType)
	return &doc, nil
}
