package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/entagent/entagent/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func rememberCommand() *cli.Command {
	var (
		cfg  config
		tags []string
	)

	flags := []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "tag",
			Aliases:     []string{"t"},
			Usage:       "Tag to attach (repeatable)",
			Destination: &tags,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "remember",
		Usage:     "Store a long-term memory",
		ArgsUsage: "<text>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)
			if c.Args().Len() < 1 {
				return goerr.New("text is required")
			}

			svc, err := cfg.newService(ctx)
			if err != nil {
				return err
			}

			mem, err := svc.Remember(c.Args().Get(0), tags, nil)
			if err != nil {
				return goerr.Wrap(err, "failed to store memory")
			}

			fmt.Fprintf(c.Root().Writer, "remembered %s\n", mem.ID)
			return nil
		},
	}
}

func recallCommand() *cli.Command {
	var (
		cfg    config
		topK   int64
		byTags bool
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "top-k",
			Aliases:     []string{"k"},
			Usage:       "Maximum number of results",
			Value:       5,
			Destination: &topK,
		},
		&cli.BoolFlag{
			Name:        "by-tags",
			Usage:       "Treat the query as whitespace-separated tags",
			Destination: &byTags,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "recall",
		Usage:     "Search long-term memories",
		ArgsUsage: "<query>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)
			if c.Args().Len() < 1 {
				return goerr.New("query is required")
			}

			svc, err := cfg.newService(ctx)
			if err != nil {
				return err
			}

			results := svc.Recall(c.Args().Get(0), int(topK), byTags)
			if len(results) == 0 {
				fmt.Fprintf(c.Root().Writer, "no memories found\n")
				return nil
			}

			for _, mem := range results {
				data, err := json.Marshal(mem)
				if err != nil {
					return goerr.Wrap(err, "failed to marshal memory")
				}
				fmt.Fprintf(c.Root().Writer, "%s\n", data)
			}
			return nil
		},
	}
}

func forgetCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "forget",
		Usage:     "Delete a long-term memory permanently",
		ArgsUsage: "<memory-id>",
		Flags:     globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)
			if c.Args().Len() < 1 {
				return goerr.New("memory id is required")
			}
			id := model.MemoryID(c.Args().Get(0))

			svc, err := cfg.newService(ctx)
			if err != nil {
				return err
			}

			removed, err := svc.Forget(id)
			if err != nil {
				return goerr.Wrap(err, "failed to delete memory")
			}
			if !removed {
				fmt.Fprintf(c.Root().Writer, "no memory with id %s\n", id)
				return nil
			}

			fmt.Fprintf(c.Root().Writer, "forgot %s\n", id)
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "export",
		Usage:     "Write a snapshot of all long-term memories",
		ArgsUsage: "[path]",
		Flags:     globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			path := c.Args().Get(0)
			if path == "" {
				path = "memory_export.json"
			}

			svc, err := cfg.newService(ctx)
			if err != nil {
				return err
			}

			if err := svc.Export(path); err != nil {
				return goerr.Wrap(err, "failed to export memories")
			}

			fmt.Fprintf(c.Root().Writer, "exported to %s\n", path)
			return nil
		},
	}
}
