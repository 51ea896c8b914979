package memory

import (
	"github.com/entagent/entagent/pkg/model"
	"github.com/entagent/entagent/pkg/repository"
)

// Service is the unified memory interface: session history on one side,
// long-term memories on the other. It holds no state of its own.
type Service struct {
	sessions *repository.SessionStore
	bank     *repository.Bank
}

func New(sessions *repository.SessionStore, bank *repository.Bank) *Service {
	return &Service{
		sessions: sessions,
		bank:     bank,
	}
}

// StartSession creates (or returns) the session for id. An empty id gets a
// generated one.
func (s *Service) StartSession(id model.SessionID, metadata map[string]any) *model.Session {
	if id == "" {
		id = model.NewSessionID()
	}
	return s.sessions.Create(id, metadata)
}

// AddMessage appends a role+text message event to the session
func (s *Service) AddMessage(id model.SessionID, role, text string) (model.Event, error) {
	return s.sessions.Append(id, model.Record{
		Kind: model.KindMessage,
		Role: role,
		Text: text,
	}, false)
}

// GetSessionHistory returns the session's events, or only the most recent
// lastN when lastN > 0
func (s *Service) GetSessionHistory(id model.SessionID, lastN int) []model.Event {
	return s.sessions.History(id, lastN)
}

// Remember stores a durable long-term memory
func (s *Service) Remember(text string, tags []string, meta map[string]any) (model.Memory, error) {
	return s.bank.Add(text, tags, meta)
}

// Recall searches long-term memories
func (s *Service) Recall(query string, topK int, byTags bool) []model.Memory {
	return s.bank.Query(query, topK, byTags)
}

// Forget permanently deletes a long-term memory
func (s *Service) Forget(id model.MemoryID) (bool, error) {
	return s.bank.Delete(id)
}

// Export snapshots all long-term memories to path
func (s *Service) Export(path string) error {
	return s.bank.Export(path)
}
