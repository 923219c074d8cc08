package repository

import (
	"context"

	"filingapi/internal/model"
)

// ResultRepository defines data access for parsed results and risk flags.
type ResultRepository interface {
	// Create inserts a parsed-result record and returns the stored row.
	Create(ctx context.Context, r *model.ParsedResult) (*model.ParsedResult, error)

	// FindByFiling returns the parsed result for a filing scoped by owner.
	FindByFiling(ctx context.Context, filingID, ownerID string) (*model.ParsedResult, error)

	// UpsertRiskFlags inserts or replaces the single risk-flag row per filing.
	UpsertRiskFlags(ctx context.Context, flags *model.RiskFlags) error

	// FindRiskFlags returns the risk flags for a filing scoped by owner.
	FindRiskFlags(ctx context.Context, filingID, ownerID string) (*model.RiskFlags, error)
}
