package postgres

import (
	"context"
	"database/sql"

	"filingapi/internal/model"
	"filingapi/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, filing_id, user_id, document_type, storage_path, content_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, filing_id, user_id, document_type, storage_path, content_type, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.FilingID,
		doc.OwnerID,
		doc.DocumentType,
		doc.StoragePath,
		doc.ContentType,
		doc.CreatedAt,
	)
	var out model.Document
	if err := row.Scan(
		&out.ID,
		&out.FilingID,
		&out.OwnerID,
		&out.DocumentType,
		&out.StoragePath,
		&out.ContentType,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByFiling returns all documents for a filing scoped by owner, oldest first.
func (r *DocumentPostgres) ListByFiling(ctx context.Context, filingID, ownerID string) ([]model.Document, error) {
	const q = `
		SELECT id, filing_id, user_id, document_type, storage_path, content_type, created_at
		FROM documents
		WHERE filing_id = $1 AND user_id = $2
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, filingID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		var d model.Document
		if err := rows.Scan(
			&d.ID,
			&d.FilingID,
			&d.OwnerID,
			&d.DocumentType,
			&d.StoragePath,
			&d.ContentType,
			&d.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
