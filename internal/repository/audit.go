package repository

import (
	"context"

	"filingapi/internal/model"
)

// AuditRepository defines access to the append-only audit log.
type AuditRepository interface {
	// Append writes one event record. Entries are never mutated or deleted.
	Append(ctx context.Context, ownerID, eventType string, metadata map[string]any) error

	// List returns up to limit entries, newest first.
	List(ctx context.Context, limit int) ([]model.AuditEntry, error)
}

// UserRepository keeps the minimal identity records referenced by filings.
type UserRepository interface {
	// Ensure inserts the user row if it does not exist yet.
	Ensure(ctx context.Context, u *model.User) error
}
