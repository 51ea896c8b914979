package agent

import (
	"context"
	"fmt"

	"github.com/entagent/entagent/pkg/tool"
	"github.com/entagent/entagent/pkg/usecase/memory"
)

// Research simulates market and competitor research and shapes the findings
// as structured JSON
type Research struct {
	base
}

func NewResearch(svc *memory.Service) *Research {
	return &Research{base: newBase(svc)}
}

func (a *Research) Name() string { return "Research Agent" }

func (a *Research) Handle(ctx context.Context, input string) (*Result, error) {
	a.record("user", input)

	data := simulated("Research Data", input)
	extracted := tool.ExtractJSON(fmt.Sprintf("{%q: %q}", "research", data))

	a.record("agent", fmt.Sprintf("%v", extracted))
	return &Result{Agent: a.Name(), Output: extracted}, nil
}
