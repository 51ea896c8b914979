package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/entagent/entagent/pkg/model"
	"github.com/entagent/entagent/pkg/usecase/memory"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func compactCommand() *cli.Command {
	var (
		cfg      config
		strategy string
		maxItems int64
		maxChars int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "strategy",
			Usage:       "Compaction strategy: age, importance or summary",
			Value:       "age",
			Destination: &strategy,
		},
		&cli.IntFlag{
			Name:        "max-items",
			Usage:       "Maximum events to keep",
			Value:       memory.DefaultMaxItems,
			Destination: &maxItems,
		},
		&cli.IntFlag{
			Name:        "max-chars",
			Usage:       "Character cap for the summarizer input",
			Value:       memory.DefaultMaxChars,
			Destination: &maxChars,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:      "compact",
		Usage:     "Show a session's history reduced to a bounded subset",
		ArgsUsage: "<session-id>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)
			if c.Args().Len() < 1 {
				return goerr.New("session id is required")
			}
			id := model.SessionID(c.Args().Get(0))

			sessions := cfg.newSessions()
			if _, err := sessions.Restore(id); err != nil {
				return goerr.Wrap(err, "failed to restore session")
			}
			history := sessions.History(id, 0)

			var compacted []model.Event
			switch strategy {
			case "age":
				compacted = memory.CompactByAge(history, int(maxItems))
			case "importance":
				compacted = memory.CompactByImportance(history, int(maxItems), memory.DefaultImportanceConfig())
			case "summary":
				gemini, err := cfg.newGemini(ctx)
				if err != nil {
					return err
				}
				var fn memory.Summarizer
				if gemini != nil {
					fn = memory.NewGeminiSummarizer(gemini)
				}
				compacted = memory.CompactWithSummarizer(ctx, history, int(maxChars), fn)
			default:
				return goerr.New("unknown compaction strategy", goerr.V("strategy", strategy))
			}

			for _, event := range compacted {
				data, err := json.Marshal(event)
				if err != nil {
					return goerr.Wrap(err, "failed to marshal event")
				}
				fmt.Fprintf(c.Root().Writer, "%s\n", data)
			}
			return nil
		},
	}
}
