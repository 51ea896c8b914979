package agent

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/entagent/entagent/pkg/tool"
	"github.com/entagent/entagent/pkg/usecase/memory"
)

// BusinessAnalyst extracts business figures from the request and turns them
// into a KPI report
type BusinessAnalyst struct {
	base
}

func NewBusinessAnalyst(svc *memory.Service) *BusinessAnalyst {
	return &BusinessAnalyst{base: newBase(svc)}
}

func (a *BusinessAnalyst) Name() string { return "Business Analyst Agent" }

func (a *BusinessAnalyst) Handle(ctx context.Context, input string) (*Result, error) {
	a.record("user", input)

	report := tool.CalculateKPI(
		extractFloat(input, "sales"),
		extractFloat(input, "expense"),
		extractInt(input, "leads", 1),
		extractInt(input, "customers", 1),
	)

	a.record("agent", fmt.Sprintf("%+v", report))
	return &Result{Agent: a.Name(), Output: report}, nil
}

// extractFloat finds "<key>=<number>" in the input, 0 when absent
func extractFloat(input, key string) float64 {
	re := regexp.MustCompile(key + `\s*=\s*(\d+(?:\.\d+)?)`)
	match := re.FindStringSubmatch(input)
	if match == nil {
		return 0
	}
	v, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0
	}
	return v
}

// extractInt finds "<key>=<number>" in the input, def when absent
func extractInt(input, key string, def int) int {
	re := regexp.MustCompile(key + `\s*=\s*(\d+)`)
	match := re.FindStringSubmatch(input)
	if match == nil {
		return def
	}
	v, err := strconv.Atoi(match[1])
	if err != nil {
		return def
	}
	return v
}
