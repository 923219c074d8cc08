package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"filingapi/internal/model"
	"filingapi/internal/repository"
)

// FilingPostgres is a PostgreSQL implementation of repository.FilingRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type FilingPostgres struct {
	db *sql.DB
}

// NewFilingPostgres creates a new FilingPostgres repository.
func NewFilingPostgres(db *sql.DB) *FilingPostgres {
	return &FilingPostgres{db: db}
}

var _ repository.FilingRepository = (*FilingPostgres)(nil)

// Create inserts a new filing row and returns the stored record.
func (r *FilingPostgres) Create(ctx context.Context, f *model.Filing) (*model.Filing, error) {
	const q = `
		INSERT INTO filings (id, user_id, status, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, status, metadata, created_at
	`
	meta, err := json.Marshal(f.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	row := r.db.QueryRowContext(ctx, q, f.ID, f.OwnerID, f.Status, meta, f.CreatedAt)
	return scanFiling(row)
}

// FindByID fetches a filing scoped by (id, owner).
func (r *FilingPostgres) FindByID(ctx context.Context, id, ownerID string) (*model.Filing, error) {
	const q = `
		SELECT id, user_id, status, metadata, created_at
		FROM filings
		WHERE id = $1 AND user_id = $2
	`
	return scanFiling(r.db.QueryRowContext(ctx, q, id, ownerID))
}

// UpdateStatus sets the filing status, scoped by (id, owner).
func (r *FilingPostgres) UpdateStatus(ctx context.Context, id, ownerID string, status model.FilingStatus) error {
	const q = `UPDATE filings SET status = $1 WHERE id = $2 AND user_id = $3`
	res, err := r.db.ExecContext(ctx, q, status, id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AtomicFinalize implements the exclusive finalize transition. The row lock is
// held from the status read until both the commitment insert and the status
// update commit, so concurrent callers serialize on the filing row and at most
// one of them ever applies the transition.
func (r *FilingPostgres) AtomicFinalize(ctx context.Context, filingID, ownerID string, c *model.Commitment) (repository.FinalizeOutcome, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin finalize tx: %w", err)
	}
	defer tx.Rollback()

	const lockQ = `SELECT status FROM filings WHERE id = $1 AND user_id = $2 FOR UPDATE`
	var status model.FilingStatus
	if err := tx.QueryRowContext(ctx, lockQ, filingID, ownerID).Scan(&status); err != nil {
		if err == sql.ErrNoRows {
			return repository.FinalizeNotFound, nil
		}
		return 0, fmt.Errorf("lock filing row: %w", err)
	}
	if status == model.StatusFinal {
		return repository.FinalizeAlreadyFinal, nil
	}

	const insertQ = `
		INSERT INTO commitments (id, filing_id, user_id, commitment_hash, commitment_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := tx.ExecContext(ctx, insertQ, c.ID, c.FilingID, c.OwnerID, c.CommitmentHash, c.CommitmentID, c.CreatedAt); err != nil {
		return 0, fmt.Errorf("insert commitment: %w", err)
	}

	const updateQ = `UPDATE filings SET status = $1 WHERE id = $2 AND user_id = $3`
	if _, err := tx.ExecContext(ctx, updateQ, model.StatusFinal, filingID, ownerID); err != nil {
		return 0, fmt.Errorf("update filing status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit finalize tx: %w", err)
	}
	return repository.FinalizeApplied, nil
}

// FindCommitment returns the commitment recorded for a filing.
func (r *FilingPostgres) FindCommitment(ctx context.Context, filingID, ownerID string) (*model.Commitment, error) {
	const q = `
		SELECT id, filing_id, user_id, commitment_hash, commitment_id, created_at
		FROM commitments
		WHERE filing_id = $1 AND user_id = $2
	`
	row := r.db.QueryRowContext(ctx, q, filingID, ownerID)
	var c model.Commitment
	if err := row.Scan(&c.ID, &c.FilingID, &c.OwnerID, &c.CommitmentHash, &c.CommitmentID, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFiling(row rowScanner) (*model.Filing, error) {
	var f model.Filing
	var meta []byte
	if err := row.Scan(&f.ID, &f.OwnerID, &f.Status, &meta, &f.CreatedAt); err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &f.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &f, nil
}
