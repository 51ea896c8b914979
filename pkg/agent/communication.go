package agent

import (
	"context"

	"github.com/entagent/entagent/pkg/tool"
	"github.com/entagent/entagent/pkg/usecase/memory"
)

// Communication drafts meeting messages and business emails
type Communication struct {
	base
}

func NewCommunication(svc *memory.Service) *Communication {
	return &Communication{base: newBase(svc)}
}

func (a *Communication) Name() string { return "Communication Agent" }

func (a *Communication) Handle(ctx context.Context, input string) (*Result, error) {
	a.record("user", input)

	body := simulated("LLM", input)
	email := tool.GenerateEmail("Automated Business Email", body, "")

	a.record("agent", email)
	return &Result{Agent: a.Name(), Output: email}, nil
}
