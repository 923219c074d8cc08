// Package canonical produces the deterministic byte representation and content
// hash of a filing's reviewable state. The serialization sorts all object keys
// lexicographically and uses compact separators, so two structurally equal
// inputs hash identically regardless of construction order.
package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"filingapi/internal/model"
)

// Digest serializes the filing's core fields, its documents, and its parsed
// result into canonical bytes and returns the lowercase-hex SHA-256 digest
// alongside the bytes. It is a pure function of its input.
func Digest(filing *model.Filing, documents []model.Document, result *model.ParsedResult) (string, []byte, error) {
	payload := map[string]any{
		"filing":     filingFields(filing),
		"documents":  documentFields(documents),
		"ml_results": resultFields(result),
	}

	// encoding/json writes map keys in sorted order with no whitespace, which
	// is exactly the canonical form required here.
	b, err := json.Marshal(payload)
	if err != nil {
		return "", nil, fmt.Errorf("canonical marshal: %w", err)
	}

	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), b, nil
}

// filingFields flattens the filing's own columns, excluding nested collections.
func filingFields(f *model.Filing) map[string]any {
	return map[string]any{
		"id":         f.ID,
		"user_id":    f.OwnerID,
		"status":     string(f.Status),
		"metadata":   f.Metadata,
		"created_at": f.CreatedAt.UTC().Format("2006-01-02T15:04:05.999999Z07:00"),
	}
}

func documentFields(docs []model.Document) []map[string]any {
	out := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		out = append(out, map[string]any{
			"id":            d.ID,
			"filing_id":     d.FilingID,
			"user_id":       d.OwnerID,
			"document_type": d.DocumentType,
			"storage_path":  d.StoragePath,
			"content_type":  d.ContentType,
			"created_at":    d.CreatedAt.UTC().Format("2006-01-02T15:04:05.999999Z07:00"),
		})
	}
	return out
}

func resultFields(r *model.ParsedResult) map[string]any {
	return map[string]any{
		"id":          r.ID,
		"filing_id":   r.FilingID,
		"user_id":     r.OwnerID,
		"parsed_json": r.Fields,
		"created_at":  r.CreatedAt.UTC().Format("2006-01-02T15:04:05.999999Z07:00"),
	}
}
