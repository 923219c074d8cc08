package model

import "time"

// Filing is a tax-filing case progressing through the fixed status sequence
// DRAFT -> DOCUMENT_UPLOADED -> ML_PARSED -> FINAL. The owner is immutable and
// every read or write of a filing is scoped by (id, owner_id).
type Filing struct {
	ID        string         `json:"id"`
	OwnerID   string         `json:"user_id"`
	Status    FilingStatus   `json:"status"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}

// FullName returns the display name stored in the filing metadata, if any.
func (f *Filing) FullName() string {
	if f.Metadata == nil {
		return ""
	}
	if v, ok := f.Metadata["full_name"].(string); ok {
		return v
	}
	return ""
}
