package cli

import (
	"context"
	"os"

	"github.com/entagent/entagent/pkg/adapter"
	"github.com/entagent/entagent/pkg/agent"
	"github.com/entagent/entagent/pkg/repository"
	"github.com/entagent/entagent/pkg/usecase/memory"
	"github.com/entagent/entagent/pkg/usecase/orchestrator"
	"github.com/entagent/entagent/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// config holds configuration values
type config struct {
	// Stores
	memoryFile  string
	sessionsDir string

	// Logging
	logLevel string

	// Orchestrator
	rulesFile string

	// Adapters
	geminiProject  string
	geminiLocation string
	geminiModel    string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "memory-file",
			Aliases:     []string{"m"},
			Usage:       "Path to the long-term memory bank JSON file",
			Value:       "memory_bank.json",
			Sources:     cli.EnvVars("ENTAGENT_MEMORY_FILE"),
			Destination: &cfg.memoryFile,
		},
		&cli.StringFlag{
			Name:        "sessions-dir",
			Aliases:     []string{"s"},
			Usage:       "Directory for session checkpoint files",
			Value:       "sessions",
			Sources:     cli.EnvVars("ENTAGENT_SESSIONS_DIR"),
			Destination: &cfg.sessionsDir,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("ENTAGENT_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
	}
}

// llmFlags returns flags for the generative backend with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini (optional)",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini generative model",
			Value:       "gemini-2.5-flash",
			Sources:     cli.EnvVars("GEMINI_MODEL"),
			Destination: &cfg.geminiModel,
		},
	}
}

// routerFlags returns flags for the orchestrator
func routerFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "rules",
			Usage:       "YAML file overriding the routing rule table",
			Sources:     cli.EnvVars("ENTAGENT_RULES"),
			Destination: &cfg.rulesFile,
		},
	}
}

// loggerContext installs a logger built from the configured level into the
// context and as the process default
func (cfg *config) loggerContext(ctx context.Context) context.Context {
	logger := logging.New(cfg.logLevel, os.Stderr)
	logging.SetDefault(logger)
	return logging.With(ctx, logger)
}

// newSessions creates the session store
func (cfg *config) newSessions() *repository.SessionStore {
	return repository.NewSessionStore(cfg.sessionsDir)
}

// newService creates the memory facade over both stores
func (cfg *config) newService(ctx context.Context) (*memory.Service, error) {
	bank, err := repository.OpenBank(ctx, cfg.memoryFile)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open memory bank")
	}
	return memory.New(cfg.newSessions(), bank), nil
}

// newGemini creates a Gemini adapter, or nil when no project is configured.
// A nil adapter is not an error: generative paths degrade to simulated
// responses.
func (cfg *config) newGemini(ctx context.Context) (adapter.Gemini, error) {
	if cfg.geminiProject == "" {
		return nil, nil
	}
	if cfg.geminiLocation == "" {
		return nil, goerr.New("gemini-location is required")
	}

	gemini, err := adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation,
		adapter.WithGenerativeModel(cfg.geminiModel))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gemini adapter")
	}
	return gemini, nil
}

// newOrchestrator wires the router, agents and fallback agent together
func (cfg *config) newOrchestrator(ctx context.Context) (*orchestrator.Orchestrator, error) {
	svc, err := cfg.newService(ctx)
	if err != nil {
		return nil, err
	}

	gemini, err := cfg.newGemini(ctx)
	if err != nil {
		return nil, err
	}

	var opts []orchestrator.Option
	if cfg.rulesFile != "" {
		rules, err := orchestrator.LoadRules(cfg.rulesFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, orchestrator.WithRules(rules))
	}

	enterprise := agent.NewEnterprise(svc, gemini)
	return orchestrator.New(svc, enterprise, opts...), nil
}
