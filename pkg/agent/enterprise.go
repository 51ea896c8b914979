package agent

import (
	"context"

	"github.com/entagent/entagent/pkg/adapter"
	"github.com/entagent/entagent/pkg/usecase/memory"
	"github.com/entagent/entagent/pkg/utils/logging"
)

// Enterprise is the catch-all agent for requests no specialized agent
// claims. With a Gemini client it answers generatively; without one (or when
// the call fails) it degrades to a simulated response instead of erroring.
type Enterprise struct {
	base
	gemini adapter.Gemini
}

// NewEnterprise creates the fallback agent. gemini may be nil.
func NewEnterprise(svc *memory.Service, gemini adapter.Gemini) *Enterprise {
	return &Enterprise{base: newBase(svc), gemini: gemini}
}

func (a *Enterprise) Name() string { return "Enterprise Agent" }

func (a *Enterprise) Handle(ctx context.Context, input string) (*Result, error) {
	a.record("user", input)

	response := a.Respond(ctx, "Process this request: "+input)

	a.record("agent", response)
	return &Result{Agent: a.Name(), Output: response}, nil
}

// Respond answers a raw prompt, degrading to a simulated response on any
// failure. Also used by the router to draft email bodies.
func (a *Enterprise) Respond(ctx context.Context, prompt string) string {
	if a.gemini == nil {
		return simulated("LLM", prompt)
	}

	response, err := adapter.GenerateText(ctx, a.gemini, prompt)
	if err != nil {
		logging.From(ctx).Warn("generative call failed, using simulated response", "error", err)
		return simulated("LLM", prompt)
	}
	return response
}
