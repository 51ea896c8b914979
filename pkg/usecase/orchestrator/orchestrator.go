package orchestrator

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/entagent/entagent/pkg/agent"
	"github.com/entagent/entagent/pkg/model"
	"github.com/entagent/entagent/pkg/tool"
	"github.com/entagent/entagent/pkg/usecase/memory"
	"github.com/entagent/entagent/pkg/utils/logging"
)

// Response is what the orchestrator returns for every request. Failures are
// reported in Err with a simulated Fallback; Route itself never fails.
type Response struct {
	Agent    string `json:"agent"`
	Result   any    `json:"result,omitempty"`
	Err      string `json:"error,omitempty"`
	Fallback string `json:"fallback,omitempty"`
}

// Orchestrator routes free-text requests to tool handlers and specialized
// agents by keyword, with the enterprise agent as the default
type Orchestrator struct {
	memory     *memory.Service
	sessionID  model.SessionID
	rules      []Rule
	agents     map[Target]agent.Agent
	enterprise *agent.Enterprise
}

type Option func(*Orchestrator)

// WithRules replaces the default routing table
func WithRules(rules []Rule) Option {
	return func(o *Orchestrator) {
		o.rules = rules
	}
}

// New builds an orchestrator with its own session and the four specialized
// agents. enterprise handles everything no rule claims.
func New(svc *memory.Service, enterprise *agent.Enterprise, opts ...Option) *Orchestrator {
	session := svc.StartSession("", map[string]any{"owner": "orchestrator"})

	o := &Orchestrator{
		memory:    svc,
		sessionID: session.ID,
		rules:     DefaultRules(),
		agents: map[Target]agent.Agent{
			TargetResearch:      agent.NewResearch(svc),
			TargetDocumentation: agent.NewDocumentation(svc),
			TargetCommunication: agent.NewCommunication(svc),
			TargetBusiness:      agent.NewBusinessAnalyst(svc),
		},
		enterprise: enterprise,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// SessionID returns the orchestrator's own conversation session
func (o *Orchestrator) SessionID() model.SessionID {
	return o.sessionID
}

// Route dispatches one request and records the exchange. The first rule
// whose keyword appears in the input wins; unmatched input goes to the
// enterprise agent.
func (o *Orchestrator) Route(ctx context.Context, input string) *Response {
	o.recordMessage("user", input)

	lower := strings.ToLower(input)
	for _, rule := range o.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lower, keyword) {
				return o.dispatch(ctx, rule.Target, input)
			}
		}
	}

	return o.callAgent(ctx, o.enterprise, input)
}

func (o *Orchestrator) dispatch(ctx context.Context, target Target, input string) *Response {
	switch target {
	case TargetKPI:
		return o.runKPI(input)
	case TargetSummary:
		return o.runSummary(input)
	case TargetEmail:
		return o.runEmail(ctx, input)
	case TargetJSON:
		return o.runJSON(input)
	case TargetFile:
		return o.runFile(input)
	default:
		a, ok := o.agents[target]
		if !ok {
			return &Response{Agent: string(target), Err: "agent not found"}
		}
		return o.callAgent(ctx, a, input)
	}
}

// callAgent invokes an agent and converts any failure into a fallback
// response so the router never surfaces an error
func (o *Orchestrator) callAgent(ctx context.Context, a agent.Agent, input string) *Response {
	logging.From(ctx).Debug("routing to agent", "agent", a.Name())

	result, err := a.Handle(ctx, input)
	if err != nil {
		logging.From(ctx).Warn("agent failed", "agent", a.Name(), "error", err)
		return &Response{
			Agent:    a.Name(),
			Err:      err.Error(),
			Fallback: fmt.Sprintf("[Simulated Response] %s", truncate(input, 120)),
		}
	}

	o.recordMessage("agent", fmt.Sprintf("%v", result.Output))
	return &Response{Agent: result.Agent, Result: result.Output}
}

var numberPattern = regexp.MustCompile(`[-+]?\d*\.\d+|\d+`)

// runKPI expects sales, expense, leads and customers as the first four
// numbers in the input; anything less computes from zeros
func (o *Orchestrator) runKPI(input string) *Response {
	nums := numberPattern.FindAllString(input, -1)

	var sales, expense float64
	var leads, customers int
	if len(nums) >= 4 {
		sales, _ = strconv.ParseFloat(nums[0], 64)
		expense, _ = strconv.ParseFloat(nums[1], 64)
		if v, err := strconv.ParseFloat(nums[2], 64); err == nil {
			leads = int(v)
		}
		if v, err := strconv.ParseFloat(nums[3], 64); err == nil {
			customers = int(v)
		}
	}

	report := tool.CalculateKPI(sales, expense, leads, customers)
	o.recordMessage("agent", fmt.Sprintf("%+v", report))
	return &Response{Agent: "KPI Agent", Result: report}
}

func (o *Orchestrator) runSummary(input string) *Response {
	result := tool.Summarize(input)
	o.recordMessage("agent", result.Summary)
	return &Response{Agent: "Summary Agent", Result: result}
}

func (o *Orchestrator) runEmail(ctx context.Context, input string) *Response {
	body := o.enterprise.Respond(ctx, "Write a short business email: "+input)
	email := tool.GenerateEmail("Automated Email", body, "")
	o.recordMessage("agent", email)
	return &Response{Agent: "Email Agent", Result: email}
}

func (o *Orchestrator) runJSON(input string) *Response {
	result := tool.ExtractJSON(input)
	o.recordMessage("agent", fmt.Sprintf("%v", result))
	return &Response{Agent: "JSON Extractor Agent", Result: result}
}

var filePattern = regexp.MustCompile(`(?i)file (.+)`)

func (o *Orchestrator) runFile(input string) *Response {
	match := filePattern.FindStringSubmatch(input)
	if match == nil {
		return &Response{Agent: "File Reader Agent", Err: "no file path found"}
	}

	content, err := tool.ReadFile(strings.TrimSpace(match[1]))
	if err != nil {
		return &Response{Agent: "File Reader Agent", Err: err.Error()}
	}

	o.recordMessage("agent", content)
	return &Response{Agent: "File Reader Agent", Result: content}
}

func (o *Orchestrator) recordMessage(role, text string) {
	_, _ = o.memory.AddMessage(o.sessionID, role, text)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
