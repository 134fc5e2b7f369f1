// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/bureau-foundation/bunny/cmd/bunny/cli"
	"github.com/bureau-foundation/bunny/lib/version"
)

// Root returns the bunny command tree writing results to stdout.
func Root() *cli.Command {
	return newRoot(os.Stdout)
}

func newRoot(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name: "bunny",
		Description: `bunny: remote asset bundles for games.

Pack source assets into bundles, serve them over HTTP, and load them
by reference through the same cache and in-flight coordinator a game
host uses.`,
		Subcommands: []*cli.Command{
			packCommand(stdout),
			inspectCommand(stdout),
			getCommand(stdout),
			renderCommand(stdout),
			serveCommand(),
			keygenCommand(stdout),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, _ []string) error {
					fmt.Fprintf(stdout, "bunny %s\n", version.Full())
					return nil
				},
			},
		},
	}
}
