// Package main provides the entry point for respcache-cli.
//
// respcache-cli is the command-line client for respcache-server:
//
//	respcache-cli ping
//	respcache-cli echo hello
//	respcache-cli set foo bar --px 5000
//	respcache-cli get foo
package main

import (
	"fmt"
	"os"

	"github.com/gohermgo/respcache/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
