package gemini

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeJSON unmarshals a model response that should be JSON but may arrive
// wrapped in markdown. It tries the raw text, then the text with ```json
// fences stripped, then the first {...} block it can find.
func decodeJSON(raw string, v interface{}) error {
	raw = strings.TrimSpace(raw)
	if json.Unmarshal([]byte(raw), v) == nil {
		return nil
	}

	stripped := strings.TrimPrefix(raw, "```json")
	stripped = strings.TrimPrefix(stripped, "```")
	stripped = strings.TrimSuffix(stripped, "```")
	stripped = strings.TrimSpace(stripped)
	if json.Unmarshal([]byte(stripped), v) == nil {
		return nil
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || start > end {
		return fmt.Errorf("no JSON object found in model response")
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), v); err != nil {
		return fmt.Errorf("failed to parse model response as JSON: %w", err)
	}
	return nil
}
