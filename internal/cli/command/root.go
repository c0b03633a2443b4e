// Package command provides CLI command definitions for respcache-cli.
//
// It uses urfave/cli/v2 for command parsing. Each command dials the
// server, runs one request, prints the reply, and disconnects.
package command

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/gohermgo/respcache/internal/cli/connection"
	"github.com/gohermgo/respcache/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "respcache-cli",
		Usage:   "respcache command-line client",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			PingCommand(),
			EchoCommand(),
			GetCommand(),
			SetCommand(),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "respcache server address",
			EnvVars: []string{"RESPCACHE_SERVER"},
			Value:   "127.0.0.1:6379",
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "dial and request timeout",
			Value:   5 * time.Second,
		},
	}
}

// dial opens a connection using the global flags.
func dial(c *cli.Context) (*connection.Client, error) {
	client, err := connection.Dial(c.String("server"), c.Duration("timeout"))
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", c.String("server"), err)
	}
	return client, nil
}

// printReply renders a reply the way redis-cli does: nil as "(nil)",
// text verbatim.
func printReply(r connection.Reply) {
	if r.IsNil {
		fmt.Println("(nil)")
		return
	}
	fmt.Println(r.Text)
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
