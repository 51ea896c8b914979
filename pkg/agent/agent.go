package agent

import (
	"context"
	"fmt"

	"github.com/entagent/entagent/pkg/model"
	"github.com/entagent/entagent/pkg/usecase/memory"
)

// Agent handles one category of user requests. Every agent records the
// exchange in its own session.
type Agent interface {
	Name() string
	Handle(ctx context.Context, input string) (*Result, error)
}

// Result is an agent's answer to one request
type Result struct {
	Agent  string `json:"agent"`
	Output any    `json:"result"`
}

// base carries the session bookkeeping shared by all agents
type base struct {
	memory    *memory.Service
	sessionID model.SessionID
}

func newBase(svc *memory.Service) base {
	session := svc.StartSession("", nil)
	return base{memory: svc, sessionID: session.ID}
}

// SessionID returns the agent's own conversation session
func (b *base) SessionID() model.SessionID {
	return b.sessionID
}

func (b *base) record(role, text string) {
	// Session bookkeeping must not fail the request
	_, _ = b.memory.AddMessage(b.sessionID, role, text)
}

// simulated produces the canned response used when no generative backend is
// configured or a real call failed
func simulated(kind, input string) string {
	return fmt.Sprintf("[Simulated %s Response] %s", kind, truncate(input, 150))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
