package model

import "time"

// ParsedResult holds the machine-extracted fields for a filing. One result
// exists per filing in this workflow.
type ParsedResult struct {
	ID        string         `json:"id"`
	FilingID  string         `json:"filing_id"`
	OwnerID   string         `json:"user_id"`
	Fields    map[string]any `json:"parsed_json"`
	CreatedAt time.Time      `json:"created_at"`
}

// RiskFlags maps field names to risk labels for a filing. Labels are restricted
// to RiskGreen and RiskYellow; one row exists per filing.
type RiskFlags struct {
	FilingID string            `json:"filing_id"`
	OwnerID  string            `json:"user_id"`
	Flags    map[string]string `json:"flags"`
}
