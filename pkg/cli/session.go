package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/entagent/entagent/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func sessionCommand() *cli.Command {
	return &cli.Command{
		Name:  "session",
		Usage: "Manage conversation sessions",
		Commands: []*cli.Command{
			sessionAppendCommand(),
			sessionHistoryCommand(),
			sessionCheckpointCommand(),
			sessionRestoreCommand(),
			sessionClearCommand(),
		},
	}
}

func sessionAppendCommand() *cli.Command {
	var (
		cfg        config
		role       string
		kind       string
		checkpoint bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "role",
			Usage:       "Role of the message author",
			Value:       "user",
			Destination: &role,
		},
		&cli.StringFlag{
			Name:        "kind",
			Usage:       "Record kind (message, tool_call, final_response, ...)",
			Value:       string(model.KindMessage),
			Destination: &kind,
		},
		&cli.BoolFlag{
			Name:        "checkpoint",
			Aliases:     []string{"c"},
			Usage:       "Checkpoint the session to disk after appending",
			Destination: &checkpoint,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "append",
		Usage:     "Append an event to a session",
		ArgsUsage: "<session-id> <text>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)
			if c.Args().Len() < 2 {
				return goerr.New("session id and text are required")
			}
			id := model.SessionID(c.Args().Get(0))

			sessions := cfg.newSessions()
			// A fresh process has nothing in memory; load any prior
			// checkpoint so the append extends it instead of starting over
			if _, err := sessions.Restore(id); err != nil {
				return goerr.Wrap(err, "failed to restore session")
			}

			event, err := sessions.Append(id, model.Record{
				Kind: model.RecordKind(kind),
				Role: role,
				Text: c.Args().Get(1),
			}, checkpoint)
			if err != nil {
				return goerr.Wrap(err, "failed to append event")
			}

			fmt.Fprintf(c.Root().Writer, "appended at %s\n", event.TS.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

func sessionHistoryCommand() *cli.Command {
	var (
		cfg   config
		lastN int64
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "last",
			Aliases:     []string{"n"},
			Usage:       "Only show the most recent N events",
			Destination: &lastN,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "history",
		Usage:     "Show a session's event history (restores from checkpoint first)",
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

			history := sessions.History(id, int(lastN))
			if len(history) == 0 {
				fmt.Fprintf(c.Root().Writer, "no events for session %s\n", id)
				return nil
			}

			for _, event := range history {
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

func sessionCheckpointCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "checkpoint",
		Usage:     "Write a session's state to its checkpoint file",
		ArgsUsage: "<session-id>",
		Flags:     globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)
			if c.Args().Len() < 1 {
				return goerr.New("session id is required")
			}
			id := model.SessionID(c.Args().Get(0))

			sessions := cfg.newSessions()
			// A fresh process has nothing in memory; load any prior
			// checkpoint before writing a new one
			if _, err := sessions.Restore(id); err != nil {
				return goerr.Wrap(err, "failed to restore session")
			}

			ok, err := sessions.Checkpoint(id)
			if err != nil {
				return goerr.Wrap(err, "failed to checkpoint session")
			}
			if !ok {
				fmt.Fprintf(c.Root().Writer, "unknown session %s\n", id)
				return nil
			}

			fmt.Fprintf(c.Root().Writer, "checkpointed session %s\n", id)
			return nil
		},
	}
}

func sessionRestoreCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "restore",
		Usage:     "Load a session from its checkpoint file",
		ArgsUsage: "<session-id>",
		Flags:     globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)
			if c.Args().Len() < 1 {
				return goerr.New("session id is required")
			}
			id := model.SessionID(c.Args().Get(0))

			session, err := cfg.newSessions().Restore(id)
			if err != nil {
				return goerr.Wrap(err, "failed to restore session")
			}
			if session == nil {
				fmt.Fprintf(c.Root().Writer, "no checkpoint for session %s\n", id)
				return nil
			}

			fmt.Fprintf(c.Root().Writer, "restored session %s (%d events)\n", session.ID, len(session.History))
			return nil
		},
	}
}

func sessionClearCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "clear",
		Usage:     "Remove a session and its checkpoint file",
		ArgsUsage: "<session-id>",
		Flags:     globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)
			if c.Args().Len() < 1 {
				return goerr.New("session id is required")
			}
			id := model.SessionID(c.Args().Get(0))

			if err := cfg.newSessions().Clear(id); err != nil {
				return goerr.Wrap(err, "failed to clear session")
			}

			fmt.Fprintf(c.Root().Writer, "cleared session %s\n", id)
			return nil
		},
	}
}
