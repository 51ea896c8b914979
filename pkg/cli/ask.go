package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func askCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, llmFlags(&cfg)...)
	flags = append(flags, routerFlags(&cfg)...)

	return &cli.Command{
		Name:      "ask",
		Usage:     "Route one request through the agent orchestrator",
		ArgsUsage: "<message>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)
			if c.Args().Len() < 1 {
				return goerr.New("message is required")
			}

			orch, err := cfg.newOrchestrator(ctx)
			if err != nil {
				return err
			}

			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			sp.Suffix = " routing..."
			sp.Start()
			response := orch.Route(ctx, c.Args().Get(0))
			sp.Stop()

			data, err := json.MarshalIndent(response, "", "  ")
			if err != nil {
				return goerr.Wrap(err, "failed to marshal response")
			}
			fmt.Fprintf(c.Root().Writer, "%s\n", data)
			return nil
		},
	}
}
