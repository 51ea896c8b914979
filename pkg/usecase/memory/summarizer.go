package memory

import (
	"context"

	"github.com/entagent/entagent/pkg/adapter"
)

const summarizePrompt = `Summarize the following conversation events into a short paragraph.
Keep decisions, numbers and action items; drop greetings and filler.

`

// NewGeminiSummarizer adapts a Gemini client to the Summarizer signature
func NewGeminiSummarizer(gemini adapter.Gemini) Summarizer {
	return func(ctx context.Context, text string) (string, error) {
		return adapter.GenerateText(ctx, gemini, summarizePrompt+text)
	}
}
