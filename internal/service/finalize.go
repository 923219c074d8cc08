package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"filingapi/internal/canonical"
	"filingapi/internal/ledger"
	"filingapi/internal/model"
	"filingapi/internal/repository"
)

// FinalizeResult carries the externally verifiable outcome of a finalize call.
type FinalizeResult struct {
	CommitmentID   string `json:"commitment_id"`
	CommitmentHash string `json:"commitment_hash"`
}

// FinalizeService drives the one-way transition of a filing to FINAL. It owns
// the correctness contract: at most one call ever applies the transition for a
// given filing, even under concurrent or repeated requests.
type FinalizeService interface {
	Finalize(ctx context.Context, filingID, callerID string) (*FinalizeResult, error)
}

type finalizeService struct {
	filings   repository.FilingRepository
	documents repository.DocumentRepository
	results   repository.ResultRepository
	audit     repository.AuditRepository
	submitter ledger.Submitter
}

// NewFinalizeService constructs a new FinalizeService.
func NewFinalizeService(
	filings repository.FilingRepository,
	documents repository.DocumentRepository,
	results repository.ResultRepository,
	audit repository.AuditRepository,
	submitter ledger.Submitter,
) FinalizeService {
	return &finalizeService{
		filings:   filings,
		documents: documents,
		results:   results,
		audit:     audit,
		submitter: submitter,
	}
}

// Finalize checks preconditions, submits the canonical hash to the ledger, and
// applies the FINAL transition atomically. The precondition reads and the
// ledger call run outside the atomic region; only the repository's
// lock-check-write is synchronized. Two racing calls may both submit to the
// ledger, but only the winner's commitment is ever persisted — the loser
// observes the FINAL status under the row lock and fails with
// ErrAlreadyFinalized.
func (s *finalizeService) Finalize(ctx context.Context, filingID, callerID string) (*FinalizeResult, error) {
	filing, err := s.filings.FindByID(ctx, filingID, callerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find filing: %w", err)
	}

	docs, err := s.documents.ListByFiling(ctx, filingID, callerID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, ErrDocumentsRequired
	}

	result, err := s.results.FindByFiling(ctx, filingID, callerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParsedResultRequired
		}
		return nil, fmt.Errorf("find parsed result: %w", err)
	}

	hash, _, err := canonical.Digest(filing, docs, result)
	if err != nil {
		return nil, fmt.Errorf("canonical digest: %w", err)
	}

	// External side effect before the atomic region: if the transaction below
	// aborts, the ledger submission has already happened and its id is simply
	// discarded. No compensating action is taken.
	commitmentID, err := s.submitter.Submit(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	commitment := &model.Commitment{
		ID:             uuid.NewString(),
		FilingID:       filingID,
		OwnerID:        callerID,
		CommitmentHash: hash,
		CommitmentID:   commitmentID,
		CreatedAt:      time.Now().UTC(),
	}

	outcome, err := s.filings.AtomicFinalize(ctx, filingID, callerID, commitment)
	if err != nil {
		return nil, fmt.Errorf("finalize transaction: %w", err)
	}
	switch outcome {
	case repository.FinalizeNotFound:
		return nil, ErrNotFound
	case repository.FinalizeAlreadyFinal:
		slog.Info("redundant finalize discarded", "filing_id", filingID, "commitment_id", commitmentID)
		return nil, ErrAlreadyFinalized
	}

	appendAudit(ctx, s.audit, callerID, model.EventBlockchainWritten, map[string]any{
		"filing_id":     filingID,
		"commitment_id": commitmentID,
	})
	appendAudit(ctx, s.audit, callerID, model.EventFinalized, map[string]any{"filing_id": filingID})

	return &FinalizeResult{CommitmentID: commitmentID, CommitmentHash: hash}, nil
}
