package model

import "time"

// Commitment records the external ledger submission for a finalized filing.
// Exactly one commitment ever exists per filing; it is inserted inside the same
// transaction that moves the filing to FINAL and is immutable thereafter.
type Commitment struct {
	ID             string    `json:"id"`
	FilingID       string    `json:"filing_id"`
	OwnerID        string    `json:"user_id"`
	CommitmentHash string    `json:"commitment_hash"`
	CommitmentID   string    `json:"commitment_id"`
	CreatedAt      time.Time `json:"created_at"`
}
