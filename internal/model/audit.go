package model

import "time"

// AuditEntry is an append-only event record. Entries are write-once and
// retrieved newest-first.
type AuditEntry struct {
	ID        string         `json:"id"`
	OwnerID   string         `json:"user_id"`
	EventType string         `json:"event_type"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}

// User is the minimal identity record kept alongside filings.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}
