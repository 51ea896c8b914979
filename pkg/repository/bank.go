package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/entagent/entagent/pkg/model"
	"github.com/entagent/entagent/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

const (
	defaultTopK    = 5
	fuzzyThreshold = 0.4
)

// Bank is a persistent long-term memory store backed by a single JSON file.
// Every mutation rewrites the file through a temp-file-then-rename so readers
// never observe a half-written store. The file has no cross-process lock;
// concurrent writers from multiple processes are not coordinated.
type Bank struct {
	path     string
	memories []model.Memory
	lastID   time.Time
	seq      int
}

// OpenBank loads the store file at path. A file that exists but cannot be
// parsed is renamed to a timestamped backup and the bank starts empty.
func OpenBank(ctx context.Context, path string) (*Bank, error) {
	b := &Bank{path: path, memories: []model.Memory{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return b, nil
		}
		return nil, goerr.Wrap(err, "failed to read memory bank", goerr.V("path", path))
	}

	if err := json.Unmarshal(data, &b.memories); err != nil {
		backup := fmt.Sprintf("%s.backup.%d", path, time.Now().Unix())
		if renameErr := os.Rename(path, backup); renameErr != nil {
			return nil, goerr.Wrap(renameErr, "failed to quarantine corrupt memory bank", goerr.V("path", path))
		}
		logging.From(ctx).Warn("memory bank file is corrupt, starting empty",
			"path", path, "backup", backup, "error", err)
		b.memories = []model.Memory{}
	}

	return b, nil
}

// Path returns the store file location
func (b *Bank) Path() string {
	return b.path
}

// Add appends a new memory with a fresh time-derived ID and persists the
// full store atomically.
func (b *Bank) Add(text string, tags []string, meta map[string]any) (model.Memory, error) {
	now := time.Now().UTC()
	if now.UnixMilli() == b.lastID.UnixMilli() {
		b.seq++
	} else {
		b.lastID = now
		b.seq = 0
	}

	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(tag)))
	}

	memory := model.Memory{
		ID:        model.NewMemoryID(now, b.seq),
		CreatedAt: now,
		Tags:      normalized,
		Text:      text,
		Meta:      meta,
	}
	b.memories = append(b.memories, memory)

	if err := b.persist(); err != nil {
		return model.Memory{}, err
	}
	return memory, nil
}

// Query searches the store and returns at most topK ranked memories.
//
// In tag mode the query is whitespace-split into tags and each record is
// scored by the size of the tag intersection; zero-score records are
// excluded. In text mode a case-insensitive substring pass wins when it
// matches anything; otherwise a fuzzy pass returns near matches by
// similarity ratio.
func (b *Bank) Query(text string, topK int, byTags bool) []model.Memory {
	if topK <= 0 {
		topK = defaultTopK
	}

	if byTags {
		return b.queryByTags(text, topK)
	}

	if exact := b.querySubstring(text, topK); len(exact) > 0 {
		return exact
	}
	return b.queryFuzzy(text, topK)
}

func (b *Bank) queryByTags(text string, topK int) []model.Memory {
	queryTags := map[string]bool{}
	for _, tag := range strings.Fields(text) {
		queryTags[strings.ToLower(tag)] = true
	}

	type scored struct {
		score  int
		memory model.Memory
	}
	var results []scored
	for _, m := range b.memories {
		score := 0
		for _, tag := range m.Tags {
			if queryTags[strings.ToLower(tag)] {
				score++
			}
		}
		if score > 0 {
			results = append(results, scored{score, m})
		}
	}

	// Stable keeps insertion order among equal scores
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	out := make([]model.Memory, 0, topK)
	for _, r := range results {
		if len(out) == topK {
			break
		}
		out = append(out, r.memory)
	}
	return out
}

func (b *Bank) querySubstring(text string, topK int) []model.Memory {
	query := strings.ToLower(text)
	var out []model.Memory
	for _, m := range b.memories {
		if strings.Contains(strings.ToLower(m.Text), query) {
			out = append(out, m)
			if len(out) == topK {
				break
			}
		}
	}
	return out
}

func (b *Bank) queryFuzzy(text string, topK int) []model.Memory {
	type scored struct {
		ratio  float64
		memory model.Memory
	}
	var results []scored
	for _, m := range b.memories {
		if ratio := similarity(text, m.Text); ratio >= fuzzyThreshold {
			results = append(results, scored{ratio, m})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].ratio > results[j].ratio
	})

	out := make([]model.Memory, 0, topK)
	for _, r := range results {
		if len(out) == topK {
			break
		}
		out = append(out, r.memory)
	}
	return out
}

// similarity is a normalized edit-distance ratio in [0, 1]
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	longest := len([]rune(a))
	if n := len([]rune(b)); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}

// Delete removes the memory with the given ID and persists if anything was
// removed. Returns whether a removal happened.
func (b *Bank) Delete(id model.MemoryID) (bool, error) {
	kept := b.memories[:0:0]
	for _, m := range b.memories {
		if m.ID != id {
			kept = append(kept, m)
		}
	}

	if len(kept) == len(b.memories) {
		return false, nil
	}

	b.memories = kept
	if err := b.persist(); err != nil {
		return false, err
	}
	return true, nil
}

// Export writes a full snapshot of the store to a caller-chosen path. The
// snapshot write is a plain write, separate from the store's own file.
func (b *Bank) Export(path string) error {
	data, err := json.MarshalIndent(b.memories, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal memories")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return goerr.Wrap(err, "failed to write memory export", goerr.V("path", path))
	}
	return nil
}

// All returns a snapshot copy of every memory in insertion order
func (b *Bank) All() []model.Memory {
	out := make([]model.Memory, len(b.memories))
	copy(out, b.memories)
	return out
}

// persist rewrites the store file via temp-then-rename so a crash mid-write
// never leaves a partial file behind
func (b *Bank) persist() error {
	data, err := json.MarshalIndent(b.memories, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal memories")
	}

	if dir := filepath.Dir(b.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return goerr.Wrap(err, "failed to create memory bank directory", goerr.V("dir", dir))
		}
	}

	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return goerr.Wrap(err, "failed to write memory bank temp file", goerr.V("path", tmp))
	}
	if err := os.Rename(tmp, b.path); err != nil {
		return goerr.Wrap(err, "failed to replace memory bank file", goerr.V("path", b.path))
	}
	return nil
}
