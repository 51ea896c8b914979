package model

import (
	"fmt"
	"time"
)

type MemoryID string

// NewMemoryID generates a time-derived MemoryID. seq disambiguates IDs
// created within the same millisecond.
func NewMemoryID(t time.Time, seq int) MemoryID {
	if seq > 0 {
		return MemoryID(fmt.Sprintf("mem_%d_%d", t.UnixMilli(), seq))
	}
	return MemoryID(fmt.Sprintf("mem_%d", t.UnixMilli()))
}

// Memory represents a durable long-term memory entry with tags and free text
type Memory struct {
	ID        MemoryID       `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Tags      []string       `json:"tags"`
	Text      string         `json:"text"`
	Meta      map[string]any `json:"meta,omitempty"`
}
