package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/entagent/entagent/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// SessionStore keeps session histories in memory and checkpoints them to one
// JSON file per session under dir. All mutations are serialized by a single
// lock; concurrent readers may observe either the pre- or post-append state.
// The checkpoint directory is owned by a single process. Concurrent writers
// from multiple processes are not coordinated.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[model.SessionID]*model.Session
	dir      string
}

// NewSessionStore creates a session store that checkpoints under dir
func NewSessionStore(dir string) *SessionStore {
	return &SessionStore{
		sessions: make(map[model.SessionID]*model.Session),
		dir:      dir,
	}
}

// Create returns the session for id, creating it with an empty history if it
// does not exist yet. Re-creating an existing session returns it unchanged;
// metadata is never overwritten.
func (s *SessionStore) Create(id model.SessionID, metadata map[string]any) *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.create(id, metadata)
}

// create assumes the lock is held
func (s *SessionStore) create(id model.SessionID, metadata map[string]any) *model.Session {
	if session, ok := s.sessions[id]; ok {
		return session
	}

	if metadata == nil {
		metadata = map[string]any{}
	}
	session := &model.Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		Metadata:  metadata,
		History:   []model.Event{},
	}
	s.sessions[id] = session
	return session
}

// Append adds a new event to the session's history, creating the session if
// it does not exist. When checkpoint is true the session is written to disk
// after the append; the event is appended even if the checkpoint write fails.
func (s *SessionStore) Append(id model.SessionID, record model.Record, checkpoint bool) (model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.create(id, nil)
	event := model.Event{TS: time.Now().UTC(), Record: record}
	session.History = append(session.History, event)

	if checkpoint {
		if _, err := s.checkpoint(id); err != nil {
			return event, err
		}
	}

	return event, nil
}

// History returns a copy of the session's events in append order, or only the
// most recent lastN when lastN > 0. Unknown session IDs yield an empty slice.
func (s *SessionStore) History(id model.SessionID, lastN int) []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return []model.Event{}
	}

	history := session.History
	if lastN > 0 && lastN < len(history) {
		history = history[len(history)-lastN:]
	}

	out := make([]model.Event, len(history))
	copy(out, history)
	return out
}

// Checkpoint writes the full session state to its per-session file. Returns
// false without error when the session is unknown. The write is a plain
// overwrite; unlike the memory bank it does not go through a temp file.
func (s *SessionStore) Checkpoint(id model.SessionID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkpoint(id)
}

// checkpoint assumes the lock is held
func (s *SessionStore) checkpoint(id model.SessionID) (bool, error) {
	session, ok := s.sessions[id]
	if !ok {
		return false, nil
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return false, goerr.Wrap(err, "failed to create session directory", goerr.V("dir", s.dir))
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return false, goerr.Wrap(err, "failed to marshal session", goerr.V("session_id", id))
	}

	path := s.checkpointPath(id)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return false, goerr.Wrap(err, "failed to write session checkpoint", goerr.V("path", path))
	}

	return true, nil
}

// Restore loads a previously checkpointed session into memory, replacing any
// in-memory state for that id. Returns nil without error when no checkpoint
// file exists.
func (s *SessionStore) Restore(id model.SessionID) (*model.Session, error) {
	path := s.checkpointPath(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to read session checkpoint", goerr.V("path", path))
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal session checkpoint", goerr.V("path", path))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &session

	return &session, nil
}

// Clear removes the session from memory and deletes its checkpoint file if
// one exists. Clearing an unknown session is a no-op.
func (s *SessionStore) Clear(id model.SessionID) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	if err := os.Remove(s.checkpointPath(id)); err != nil && !os.IsNotExist(err) {
		return goerr.Wrap(err, "failed to remove session checkpoint", goerr.V("session_id", id))
	}
	return nil
}

func (s *SessionStore) checkpointPath(id model.SessionID) string {
	return filepath.Join(s.dir, string(id)+".json")
}
