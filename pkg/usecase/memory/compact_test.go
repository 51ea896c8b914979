package memory_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/entagent/entagent/pkg/model"
	"github.com/entagent/entagent/pkg/usecase/memory"
	"github.com/m-mizutani/gt"
)

func makeHistory(n int) []model.Event {
	base := time.Now().Add(-time.Duration(n) * time.Minute)
	events := make([]model.Event, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, model.Event{
			TS:     base.Add(time.Duration(i) * time.Minute),
			Record: model.Record{Kind: model.KindMessage, Text: fmt.Sprintf("msg-%d", i)},
		})
	}
	return events
}

func TestCompactByAge(t *testing.T) {
	history := makeHistory(12)

	compacted := memory.CompactByAge(history, 10)
	gt.V(t, len(compacted)).Equal(10)
	gt.V(t, compacted[0].Record.Text).Equal("msg-2")
	gt.V(t, compacted[9].Record.Text).Equal("msg-11")

	// Chronological order is preserved
	for i := 1; i < len(compacted); i++ {
		gt.V(t, compacted[i].TS.Before(compacted[i-1].TS)).Equal(false)
	}
}

func TestCompactByAgeSmallHistory(t *testing.T) {
	history := makeHistory(3)
	gt.V(t, len(memory.CompactByAge(history, 10))).Equal(3)
	gt.V(t, len(memory.CompactByAge(nil, 10))).Equal(0)
}

func TestCompactByImportance(t *testing.T) {
	old := time.Now().Add(-2 * time.Hour)
	history := []model.Event{
		{TS: old, Record: model.Record{Kind: model.KindMessage, Text: "plain"}},
		{TS: old.Add(time.Minute), Record: model.Record{
			Kind: model.KindToolCall,
			Text: "important tool call",
			Meta: map[string]any{"importance": "high"},
		}},
		{TS: old.Add(2 * time.Minute), Record: model.Record{Kind: model.KindMessage, Text: "also plain"}},
	}

	// The high-importance tool call (score 5) survives a cut to one item
	compacted := memory.CompactByImportance(history, 1, memory.DefaultImportanceConfig())
	gt.V(t, len(compacted)).Equal(1)
	gt.V(t, compacted[0].Record.Text).Equal("important tool call")
}

func TestCompactByImportanceChronologicalOutput(t *testing.T) {
	now := time.Now()
	history := []model.Event{
		{TS: now.Add(-10 * time.Minute), Record: model.Record{Kind: model.KindToolCall, Text: "early"}},
		{TS: now.Add(-5 * time.Minute), Record: model.Record{Kind: model.KindMessage, Text: "middle"}},
		{TS: now.Add(-time.Minute), Record: model.Record{Kind: model.KindFinalResponse, Text: "late"}},
	}

	compacted := memory.CompactByImportance(history, 2, memory.DefaultImportanceConfig())
	gt.V(t, len(compacted)).Equal(2)
	// Selected by score, then re-sorted into time order
	gt.V(t, compacted[0].Record.Text).Equal("early")
	gt.V(t, compacted[1].Record.Text).Equal("late")
}

func TestCompactByImportanceZeroTimestamp(t *testing.T) {
	history := []model.Event{
		{Record: model.Record{Kind: model.KindMessage, Text: "no timestamp"}},
		{TS: time.Now(), Record: model.Record{Kind: model.KindMessage, Text: "recent"}},
	}

	// Zero timestamps just miss the recency bonus; nothing blows up
	compacted := memory.CompactByImportance(history, 1, memory.DefaultImportanceConfig())
	gt.V(t, len(compacted)).Equal(1)
	gt.V(t, compacted[0].Record.Text).Equal("recent")
}

func TestCompactByImportanceConfigurableWeights(t *testing.T) {
	now := time.Now()
	history := []model.Event{
		{TS: now.Add(-2 * time.Hour), Record: model.Record{Kind: model.KindToolCall, Text: "old tool call"}},
		{TS: now.Add(-time.Minute), Record: model.Record{Kind: model.KindMessage, Text: "recent chatter"}},
	}

	// With default weights the notable kind wins
	cfg := memory.DefaultImportanceConfig()
	compacted := memory.CompactByImportance(history, 1, cfg)
	gt.V(t, compacted[0].Record.Text).Equal("old tool call")

	// Boosting recency flips the outcome
	cfg.RecencyWeight = 5
	compacted = memory.CompactByImportance(history, 1, cfg)
	gt.V(t, compacted[0].Record.Text).Equal("recent chatter")
}

func TestCompactWithSummarizer(t *testing.T) {
	history := makeHistory(8)

	var received string
	fn := func(ctx context.Context, text string) (string, error) {
		received = text
		return "a concise summary", nil
	}

	compacted := memory.CompactWithSummarizer(context.Background(), history, 0, fn)

	// Last 5 verbatim plus one synthetic summary event
	gt.V(t, len(compacted)).Equal(6)
	gt.V(t, compacted[0].Record.Text).Equal("msg-3")
	gt.V(t, compacted[4].Record.Text).Equal("msg-7")
	gt.V(t, compacted[5].Record.Kind).Equal(model.KindSummary)
	gt.V(t, compacted[5].Record.Text).Equal("a concise summary")

	// The summarizer saw the older events, not the recent ones
	gt.S(t, received).Contains("msg-0")
	gt.S(t, received).NotContains("msg-7")
}

func TestCompactWithSummarizerCharCap(t *testing.T) {
	history := makeHistory(8)

	var received string
	fn := func(ctx context.Context, text string) (string, error) {
		received = text
		return "summary", nil
	}

	memory.CompactWithSummarizer(context.Background(), history, 50, fn)
	gt.V(t, len(received) <= 50).Equal(true)
}

func TestCompactWithSummarizerCapOnRuneBoundary(t *testing.T) {
	base := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	history := make([]model.Event, 0, 8)
	for i := 0; i < 8; i++ {
		history = append(history, model.Event{
			TS:     base.Add(time.Duration(i) * time.Minute),
			Record: model.Record{Kind: model.KindMessage, Text: strings.Repeat("報", 40)},
		})
	}

	var received string
	fn := func(ctx context.Context, text string) (string, error) {
		received = text
		return "summary", nil
	}

	// 101 bytes lands one byte into a three-byte rune of the first
	// serialized event; the cap must back off instead of splitting it
	compacted := memory.CompactWithSummarizer(context.Background(), history, 101, fn)
	gt.V(t, len(compacted)).Equal(6)
	gt.V(t, len(received) <= 101).Equal(true)
	gt.V(t, utf8.ValidString(received)).Equal(true)
}

func TestCompactWithSummarizerNilFn(t *testing.T) {
	history := makeHistory(12)

	// No summarizer degrades to age-based compaction
	compacted := memory.CompactWithSummarizer(context.Background(), history, 0, nil)
	gt.V(t, len(compacted)).Equal(memory.DefaultMaxItems)
	gt.V(t, compacted[0].Record.Text).Equal("msg-2")
}

func TestCompactWithSummarizerFailure(t *testing.T) {
	history := makeHistory(12)

	fn := func(ctx context.Context, text string) (string, error) {
		return "", errors.New("model unavailable")
	}

	// A failing summarizer falls back to age-based compaction, never errors
	compacted := memory.CompactWithSummarizer(context.Background(), history, 0, fn)
	gt.V(t, len(compacted)).Equal(memory.DefaultMaxItems)
	for _, event := range compacted {
		gt.V(t, event.Record.Kind).Equal(model.KindMessage)
	}
}

func TestCompactWithSummarizerShortHistory(t *testing.T) {
	history := makeHistory(4)

	fn := func(ctx context.Context, text string) (string, error) {
		t.Fatal("summarizer must not run when nothing is older than the recent window")
		return "", nil
	}

	compacted := memory.CompactWithSummarizer(context.Background(), history, 0, fn)
	gt.V(t, len(compacted)).Equal(4)
}
