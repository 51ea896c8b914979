package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/entagent/entagent/pkg/tool"
	"github.com/entagent/entagent/pkg/usecase/memory"
)

var readFilePattern = regexp.MustCompile(`(?i)read file (.+)`)

// Documentation handles summaries, reports and file reads
type Documentation struct {
	base
}

func NewDocumentation(svc *memory.Service) *Documentation {
	return &Documentation{base: newBase(svc)}
}

func (a *Documentation) Name() string { return "Documentation Agent" }

func (a *Documentation) Handle(ctx context.Context, input string) (*Result, error) {
	a.record("user", input)

	lower := strings.ToLower(input)
	var output any

	switch {
	case strings.Contains(lower, "summarize"),
		strings.Contains(lower, "report"),
		strings.Contains(lower, "sop"),
		strings.Contains(lower, "documentation"):
		output = tool.Summarize(input)

	case strings.Contains(lower, "read file"):
		match := readFilePattern.FindStringSubmatch(input)
		if match == nil {
			output = "no file path found, expected: read file <path>"
			break
		}
		content, err := tool.ReadFile(strings.TrimSpace(match[1]))
		if err != nil {
			output = fmt.Sprintf("failed to read file: %v", err)
			break
		}
		output = content

	default:
		output = simulated("Documentation", input)
	}

	a.record("agent", fmt.Sprintf("%v", output))
	return &Result{Agent: a.Name(), Output: output}, nil
}
