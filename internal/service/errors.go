package service

import (
	"context"
	"errors"
	"log/slog"

	"filingapi/internal/repository"
)

// Sentinel errors returned by the services. Handlers translate these into
// stable client-facing result codes; anything else is a server-side fault.
var (
	ErrNotFound             = errors.New("filing not found")
	ErrDocumentsRequired    = errors.New("form-16 document required")
	ErrParsedResultRequired = errors.New("ml results required")
	ErrAlreadyFinalized     = errors.New("filing already finalized")
	ErrNotFinalized         = errors.New("filing not finalized")
	ErrCommitmentMissing    = errors.New("commitment record missing")
	ErrInvalidRiskFlags     = errors.New("risk flags must be green or yellow")
	ErrInvalidContentType   = errors.New("invalid file type")
	ErrFileTooLarge         = errors.New("file too large")
	ErrDossierMissing       = errors.New("dossier not found")
	ErrLedgerUnavailable    = errors.New("ledger unreachable")
)

// appendAudit writes an audit event best-effort. Audit failures are logged and
// never surfaced; the user-visible outcome of an operation must not depend on
// the audit trail.
func appendAudit(ctx context.Context, repo repository.AuditRepository, ownerID, eventType string, metadata map[string]any) {
	if err := repo.Append(ctx, ownerID, eventType, metadata); err != nil {
		slog.Warn("audit append failed", "event_type", eventType, "error", err)
	}
}
