package command

import (
	"github.com/urfave/cli/v2"
)

// PingCommand returns the PING command definition.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:      "ping",
		Usage:     "Check server liveness; echoes a payload when given",
		ArgsUsage: "[message]",
		Action: func(c *cli.Context) error {
			if c.NArg() > 1 {
				return cli.Exit("usage: ping [message]", 1)
			}

			client, err := dial(c)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer client.Close()

			args := []string{"PING"}
			if c.NArg() == 1 {
				args = append(args, c.Args().Get(0))
			}

			reply, err := client.Do(args...)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			printReply(reply)
			return nil
		},
	}
}

// EchoCommand returns the ECHO command definition.
func EchoCommand() *cli.Command {
	return &cli.Command{
		Name:      "echo",
		Usage:     "Echo a message back from the server",
		ArgsUsage: "<message>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: echo <message>", 1)
			}

			client, err := dial(c)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer client.Close()

			reply, err := client.Do("ECHO", c.Args().Get(0))
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			printReply(reply)
			return nil
		},
	}
}
