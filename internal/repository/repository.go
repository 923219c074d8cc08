package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
// No business logic here — strictly persistence operations. Absent rows are
// reported by propagating sql.ErrNoRows, matching database/sql conventions.

// FinalizeOutcome is the result of the atomic finalize region.
type FinalizeOutcome int

const (
	// FinalizeApplied means the commitment was inserted and the filing moved to FINAL.
	FinalizeApplied FinalizeOutcome = iota
	// FinalizeAlreadyFinal means the row-locked status check observed FINAL.
	FinalizeAlreadyFinal
	// FinalizeNotFound means no filing matched the (id, owner) scope.
	FinalizeNotFound
)
