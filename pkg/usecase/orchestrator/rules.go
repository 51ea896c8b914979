package orchestrator

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

// Target names a tool handler or specialized agent a rule routes to
type Target string

const (
	TargetKPI           Target = "kpi"
	TargetSummary       Target = "summary"
	TargetEmail         Target = "email"
	TargetJSON          Target = "json"
	TargetFile          Target = "file"
	TargetResearch      Target = "research"
	TargetDocumentation Target = "documentation"
	TargetCommunication Target = "communication"
	TargetBusiness      Target = "business"
)

// Rule routes any input containing one of its keywords to a target. Rules
// are checked in order; the first hit wins.
type Rule struct {
	Target   Target   `yaml:"target"`
	Keywords []string `yaml:"keywords"`
}

// DefaultRules mirrors the routing table the orchestrator ships with. Tool
// shortcuts come before agent routes so cheap local handlers win.
func DefaultRules() []Rule {
	return []Rule{
		{Target: TargetKPI, Keywords: []string{"kpi", "profit", "conversion"}},
		{Target: TargetSummary, Keywords: []string{"summarize", "summary"}},
		{Target: TargetEmail, Keywords: []string{"email", "mail"}},
		{Target: TargetJSON, Keywords: []string{"json"}},
		{Target: TargetFile, Keywords: []string{"file"}},
		{Target: TargetResearch, Keywords: []string{"research", "google", "market", "competitor"}},
		{Target: TargetDocumentation, Keywords: []string{"report", "sop", "documentation", "markdown"}},
		{Target: TargetCommunication, Keywords: []string{"meeting", "message", "communication"}},
		{Target: TargetBusiness, Keywords: []string{"financial", "analysis", "kpi calculation"}},
	}
}

var knownTargets = map[Target]bool{
	TargetKPI:           true,
	TargetSummary:       true,
	TargetEmail:         true,
	TargetJSON:          true,
	TargetFile:          true,
	TargetResearch:      true,
	TargetDocumentation: true,
	TargetCommunication: true,
	TargetBusiness:      true,
}

type rulesFile struct {
	Routes []Rule `yaml:"routes"`
}

// LoadRules reads a routing table override from a YAML file
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read routing rules", goerr.V("path", path))
	}

	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, goerr.Wrap(err, "failed to parse routing rules", goerr.V("path", path))
	}
	if len(f.Routes) == 0 {
		return nil, goerr.New("routing rules file has no routes", goerr.V("path", path))
	}

	for _, rule := range f.Routes {
		if !knownTargets[rule.Target] {
			return nil, goerr.New("unknown routing target", goerr.V("target", rule.Target), goerr.V("path", path))
		}
		if len(rule.Keywords) == 0 {
			return nil, goerr.New("routing rule has no keywords", goerr.V("target", rule.Target), goerr.V("path", path))
		}
	}

	return f.Routes, nil
}
