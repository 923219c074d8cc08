package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"filingapi/internal/model"
	"filingapi/internal/repository"
)

// ResultPostgres is a PostgreSQL implementation of repository.ResultRepository.
type ResultPostgres struct {
	db *sql.DB
}

// NewResultPostgres creates a new ResultPostgres repository.
func NewResultPostgres(db *sql.DB) *ResultPostgres {
	return &ResultPostgres{db: db}
}

var _ repository.ResultRepository = (*ResultPostgres)(nil)

// Create inserts a parsed-result row and returns the stored record.
func (r *ResultPostgres) Create(ctx context.Context, res *model.ParsedResult) (*model.ParsedResult, error) {
	const q = `
		INSERT INTO ml_results (id, filing_id, user_id, parsed_json, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, filing_id, user_id, parsed_json, created_at
	`
	fields, err := json.Marshal(res.Fields)
	if err != nil {
		return nil, fmt.Errorf("marshal parsed fields: %w", err)
	}
	return scanResult(r.db.QueryRowContext(ctx, q, res.ID, res.FilingID, res.OwnerID, fields, res.CreatedAt))
}

// FindByFiling returns the parsed result scoped by (filing, owner).
func (r *ResultPostgres) FindByFiling(ctx context.Context, filingID, ownerID string) (*model.ParsedResult, error) {
	const q = `
		SELECT id, filing_id, user_id, parsed_json, created_at
		FROM ml_results
		WHERE filing_id = $1 AND user_id = $2
	`
	return scanResult(r.db.QueryRowContext(ctx, q, filingID, ownerID))
}

// UpsertRiskFlags inserts or replaces the single risk-flag row per filing.
func (r *ResultPostgres) UpsertRiskFlags(ctx context.Context, flags *model.RiskFlags) error {
	const q = `
		INSERT INTO risk_flags (filing_id, user_id, flags)
		VALUES ($1, $2, $3)
		ON CONFLICT (filing_id) DO UPDATE SET flags = EXCLUDED.flags
	`
	b, err := json.Marshal(flags.Flags)
	if err != nil {
		return fmt.Errorf("marshal risk flags: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q, flags.FilingID, flags.OwnerID, b)
	return err
}

// FindRiskFlags returns the risk flags scoped by (filing, owner).
func (r *ResultPostgres) FindRiskFlags(ctx context.Context, filingID, ownerID string) (*model.RiskFlags, error) {
	const q = `
		SELECT filing_id, user_id, flags
		FROM risk_flags
		WHERE filing_id = $1 AND user_id = $2
	`
	row := r.db.QueryRowContext(ctx, q, filingID, ownerID)
	var rf model.RiskFlags
	var b []byte
	if err := row.Scan(&rf.FilingID, &rf.OwnerID, &b); err != nil {
		return nil, err
	}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &rf.Flags); err != nil {
			return nil, fmt.Errorf("unmarshal risk flags: %w", err)
		}
	}
	return &rf, nil
}

func scanResult(row rowScanner) (*model.ParsedResult, error) {
	var res model.ParsedResult
	var fields []byte
	if err := row.Scan(&res.ID, &res.FilingID, &res.OwnerID, &fields, &res.CreatedAt); err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := json.Unmarshal(fields, &res.Fields); err != nil {
			return nil, fmt.Errorf("unmarshal parsed fields: %w", err)
		}
	}
	return &res, nil
}
