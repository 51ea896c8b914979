package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "entagent",
		Usage: "Enterprise agent with session and long-term memory",
		Commands: []*cli.Command{
			sessionCommand(),
			rememberCommand(),
			recallCommand(),
			forgetCommand(),
			exportCommand(),
			compactCommand(),
			askCommand(),
			chatCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
