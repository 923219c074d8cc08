package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"filingapi/internal/model"
	"filingapi/internal/repository"
)

// AuditPostgres is a PostgreSQL implementation of repository.AuditRepository.
type AuditPostgres struct {
	db *sql.DB
}

// NewAuditPostgres creates a new AuditPostgres repository.
func NewAuditPostgres(db *sql.DB) *AuditPostgres {
	return &AuditPostgres{db: db}
}

var _ repository.AuditRepository = (*AuditPostgres)(nil)

// Append writes one event record.
func (r *AuditPostgres) Append(ctx context.Context, ownerID, eventType string, metadata map[string]any) error {
	const q = `
		INSERT INTO audit_logs (id, user_id, event_type, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if metadata == nil {
		metadata = map[string]any{}
	}
	b, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q, uuid.NewString(), ownerID, eventType, b, time.Now().UTC())
	return err
}

// List returns up to limit entries, newest first.
func (r *AuditPostgres) List(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	const q = `
		SELECT id, user_id, event_type, metadata, created_at
		FROM audit_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.AuditEntry, 0)
	for rows.Next() {
		var e model.AuditEntry
		var meta []byte
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.EventType, &meta, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal audit metadata: %w", err)
			}
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
