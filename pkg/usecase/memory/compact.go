package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/entagent/entagent/pkg/model"
	"github.com/entagent/entagent/pkg/utils/logging"
)

const (
	// DefaultMaxItems bounds compacted histories when the caller does not
	// pick a size
	DefaultMaxItems = 10

	// recentKeep is how many trailing events the summarizer strategy keeps
	// verbatim
	recentKeep = 5

	// DefaultMaxChars caps the serialized blob handed to a summarizer
	DefaultMaxChars = 2000
)

// CompactByAge keeps only the most recent maxItems events, in chronological
// order
func CompactByAge(history []model.Event, maxItems int) []model.Event {
	if len(history) == 0 {
		return []model.Event{}
	}
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	if len(history) <= maxItems {
		out := make([]model.Event, len(history))
		copy(out, history)
		return out
	}
	out := make([]model.Event, maxItems)
	copy(out, history[len(history)-maxItems:])
	return out
}

// ImportanceConfig holds the scoring knobs for CompactByImportance. The
// default values are illustrative rather than tuned; callers with real
// traffic should adjust them.
type ImportanceConfig struct {
	HighWeight    int
	NotableWeight int
	RecencyWeight int
	RecencyWindow time.Duration
	NotableKinds  []model.RecordKind
}

func DefaultImportanceConfig() ImportanceConfig {
	return ImportanceConfig{
		HighWeight:    3,
		NotableWeight: 2,
		RecencyWeight: 1,
		RecencyWindow: time.Hour,
		NotableKinds:  []model.RecordKind{model.KindToolCall, model.KindFinalResponse},
	}
}

func (c ImportanceConfig) notable(kind model.RecordKind) bool {
	for _, k := range c.NotableKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// score rates one event. Events with a zero timestamp simply miss the
// recency bonus.
func (c ImportanceConfig) score(event model.Event, now time.Time) int {
	score := 0
	if importance, ok := event.Record.Meta["importance"].(string); ok && importance == "high" {
		score += c.HighWeight
	}
	if c.notable(event.Record.Kind) {
		score += c.NotableWeight
	}
	if !event.TS.IsZero() && now.Sub(event.TS) < c.RecencyWindow {
		score += c.RecencyWeight
	}
	return score
}

// CompactByImportance keeps the maxItems highest-scoring events and returns
// them re-sorted into chronological order. Ties keep their original relative
// order.
func CompactByImportance(history []model.Event, maxItems int, cfg ImportanceConfig) []model.Event {
	if len(history) == 0 {
		return []model.Event{}
	}
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}

	now := time.Now()
	type scored struct {
		score int
		event model.Event
	}
	ranked := make([]scored, 0, len(history))
	for _, event := range history {
		ranked = append(ranked, scored{cfg.score(event, now), event})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > maxItems {
		ranked = ranked[:maxItems]
	}

	out := make([]model.Event, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.event)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TS.Before(out[j].TS)
	})
	return out
}

// Summarizer condenses a serialized batch of events into prose
type Summarizer func(ctx context.Context, text string) (string, error)

// CompactWithSummarizer keeps the most recent events verbatim and replaces
// everything older with one synthetic summary event produced by fn. A nil fn
// or any summarizer failure degrades to age-based compaction; this function
// never fails.
func CompactWithSummarizer(ctx context.Context, history []model.Event, maxChars int, fn Summarizer) []model.Event {
	if len(history) == 0 {
		return []model.Event{}
	}
	if fn == nil {
		return CompactByAge(history, DefaultMaxItems)
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	recent := history
	if len(history) > recentKeep {
		recent = history[len(history)-recentKeep:]
	}
	older := history[:len(history)-len(recent)]
	if len(older) == 0 {
		out := make([]model.Event, len(recent))
		copy(out, recent)
		return out
	}

	var blob strings.Builder
	for i, event := range older {
		data, err := json.Marshal(event)
		if err != nil {
			continue
		}
		if i > 0 {
			blob.WriteByte('\n')
		}
		blob.Write(data)
	}
	serialized := blob.String()
	if len(serialized) > maxChars {
		// Back off to a rune boundary so the cap never splits a
		// multi-byte character
		cut := maxChars
		for cut > 0 && !utf8.RuneStart(serialized[cut]) {
			cut--
		}
		serialized = serialized[:cut]
	}

	summary, err := fn(ctx, serialized)
	if err != nil {
		logging.From(ctx).Warn("summarizer failed, falling back to age-based compaction", "error", err)
		return CompactByAge(history, DefaultMaxItems)
	}

	out := make([]model.Event, 0, len(recent)+1)
	out = append(out, recent...)
	out = append(out, model.Event{
		TS:     time.Now().UTC(),
		Record: model.Record{Kind: model.KindSummary, Text: summary},
	})
	return out
}
