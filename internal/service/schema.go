package service

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// riskFlagSchema constrains risk-flag payloads: an object whose values are all
// members of the fixed label set.
var riskFlagSchema = jsonschema.MustCompileString("risk_flags.json", `{
	"type": "object",
	"additionalProperties": {
		"type": "string",
		"enum": ["green", "yellow"]
	}
}`)

// validateRiskFlags rejects any flag value outside the allowed label set
// before it reaches persistence. A nil or empty map is valid.
func validateRiskFlags(flags map[string]string) error {
	if len(flags) == 0 {
		return nil
	}
	b, err := json.Marshal(flags)
	if err != nil {
		return fmt.Errorf("marshal risk flags: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("unmarshal risk flags: %w", err)
	}
	if err := riskFlagSchema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRiskFlags, err)
	}
	return nil
}
