package model

import "time"

// Document represents an uploaded source artifact (e.g. a Form-16 PDF) tied to a
// filing and its owner. Documents are created on upload and never mutated.
type Document struct {
	ID           string    `json:"id"`
	FilingID     string    `json:"filing_id"`
	OwnerID      string    `json:"user_id"`
	DocumentType string    `json:"document_type"`
	StoragePath  string    `json:"storage_path"`
	ContentType  string    `json:"content_type"`
	CreatedAt    time.Time `json:"created_at"`
}
