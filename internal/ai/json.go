package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// stripFences removes a surrounding markdown code fence that models emit
// despite the JSON-only instruction.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if idx := strings.Index(text, "\n"); idx != -1 {
		text = text[idx+1:]
	}
	if idx := strings.LastIndex(text, "```"); idx != -1 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// decodeStrict parses the model's textual output into dest. Unknown fields
// are rejected so schema drift surfaces as a provider failure instead of
// silently reaching persistence.
func decodeStrict(text string, dest interface{}) error {
	cleaned := stripFences(text)
	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	return nil
}
