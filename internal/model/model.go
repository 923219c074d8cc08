package model

// Package model contains domain models/data structures.
// Models are pure Go types with no persistence-specific dependencies, so they can
// be shared across the HTTP, service, and repository layers.

// FilingStatus is the lifecycle state of a filing.
type FilingStatus string

const (
	StatusDraft            FilingStatus = "DRAFT"
	StatusDocumentUploaded FilingStatus = "DOCUMENT_UPLOADED"
	StatusMLParsed         FilingStatus = "ML_PARSED"
	StatusFinal            FilingStatus = "FINAL"
)

// Risk flag labels accepted on parsed results.
const (
	RiskGreen  = "green"
	RiskYellow = "yellow"
)

// Audit event types recorded by the workflow.
const (
	EventUserLogin         = "USER_LOGIN"
	EventFilingCreated     = "FILING_CREATED"
	EventForm16Uploaded    = "FORM16_UPLOADED"
	EventMLResultReceived  = "ML_RESULT_RECEIVED"
	EventBlockchainWritten = "BLOCKCHAIN_WRITTEN"
	EventFinalized         = "FINALIZED"
	EventDossierGenerated  = "DOSSIER_GENERATED"
)
