package tool

import (
	"encoding/json"
	"strings"
)

// ExtractResult is the outcome of trying to pull structured JSON out of
// free-form model output
type ExtractResult struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// ExtractJSON parses text as JSON, falling back to the first {...} block
// when the text has prose around it. Model outputs are rarely clean JSON.
func ExtractJSON(text string) ExtractResult {
	var data any
	if err := json.Unmarshal([]byte(text), &data); err == nil {
		return ExtractResult{Status: "success", Data: data}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &data); err == nil {
			return ExtractResult{Status: "success", Data: data}
		}
	}

	return ExtractResult{Status: "failed", Reason: "invalid JSON format"}
}
