package tool

import (
	"strings"
	"time"
)

// SummaryResult is a quick extractive summary with its generation time
type SummaryResult struct {
	Summary   string    `json:"summary"`
	Timestamp time.Time `json:"timestamp"`
}

const summarySentences = 3

// Summarize takes the first few sentences of the text. No model call, so the
// result is instant and deterministic.
func Summarize(text string) SummaryResult {
	sentences := strings.Split(text, ".")
	if len(sentences) > summarySentences {
		sentences = sentences[:summarySentences]
	}

	var kept []string
	for _, s := range sentences {
		if s = strings.TrimSpace(s); s != "" {
			kept = append(kept, s)
		}
	}

	return SummaryResult{
		Summary:   strings.Join(kept, " "),
		Timestamp: time.Now().UTC(),
	}
}
