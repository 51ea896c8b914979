package model

import (
	"time"

	"github.com/google/uuid"
)

type SessionID string

// NewSessionID generates a new unique SessionID
func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

// RecordKind identifies what kind of entry a record is. Unknown kinds are
// accepted as-is; the constants below are the ones the compaction scorer and
// the facade know about.
type RecordKind string

const (
	KindMessage       RecordKind = "message"
	KindToolCall      RecordKind = "tool_call"
	KindFinalResponse RecordKind = "final_response"
	KindSummary       RecordKind = "summary"
)

// Record is the payload of a single session event. Known fields are typed;
// Meta carries anything callers want to attach.
type Record struct {
	Kind RecordKind     `json:"type"`
	Role string         `json:"role,omitempty"`
	Text string         `json:"text,omitempty"`
	Meta map[string]any `json:"meta,omitempty"`
}

// Event is one timestamped append to a session's history. Events are
// immutable once appended.
type Event struct {
	TS     time.Time `json:"ts"`
	Record Record    `json:"record"`
}

// Session holds one conversation's ordered event history plus metadata
type Session struct {
	ID        SessionID      `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Metadata  map[string]any `json:"metadata"`
	History   []Event        `json:"history"`
}
