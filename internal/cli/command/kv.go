package command

import (
	"strconv"

	"github.com/urfave/cli/v2"
)

// GetCommand returns the GET command definition.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Get the value of a key",
		ArgsUsage: "<key>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: get <key>", 1)
			}

			client, err := dial(c)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer client.Close()

			reply, err := client.Do("GET", c.Args().Get(0))
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			printReply(reply)
			return nil
		},
	}
}

// SetCommand returns the SET command definition.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Set a key to a value",
		ArgsUsage: "<key> <value>",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:  "px",
				Usage: "expire the key after `MILLISECONDS`",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("usage: set <key> <value>", 1)
			}

			client, err := dial(c)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer client.Close()

			args := []string{"SET", c.Args().Get(0), c.Args().Get(1)}
			if c.IsSet("px") {
				args = append(args, "px", strconv.FormatUint(c.Uint64("px"), 10))
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
