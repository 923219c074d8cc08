package repository

import (
	"context"

	"filingapi/internal/model"
)

// FilingRepository defines data access for filings and their commitments.
type FilingRepository interface {
	// Create inserts a new filing row and returns the stored record.
	Create(ctx context.Context, f *model.Filing) (*model.Filing, error)

	// FindByID returns a filing scoped by (id, owner).
	FindByID(ctx context.Context, id, ownerID string) (*model.Filing, error)

	// UpdateStatus sets the filing status, scoped by (id, owner).
	UpdateStatus(ctx context.Context, id, ownerID string, status model.FilingStatus) error

	// AtomicFinalize locks the filing row, re-checks its status, and — unless it
	// is already FINAL — inserts the commitment and moves the status to FINAL,
	// all inside a single transaction. A losing concurrent caller observes
	// FinalizeAlreadyFinal after acquiring the lock; it never blocks
	// indefinitely and never silently succeeds.
	AtomicFinalize(ctx context.Context, filingID, ownerID string, c *model.Commitment) (FinalizeOutcome, error)

	// FindCommitment returns the commitment recorded for a finalized filing.
	FindCommitment(ctx context.Context, filingID, ownerID string) (*model.Commitment, error)
}
