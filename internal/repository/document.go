package repository

import (
	"context"

	"filingapi/internal/model"
)

// DocumentRepository defines data access for uploaded documents.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// ListByFiling returns all documents for a filing scoped by owner,
	// oldest first. The slice is empty when none exist.
	ListByFiling(ctx context.Context, filingID, ownerID string) ([]model.Document, error)
}
