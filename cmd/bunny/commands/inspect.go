// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/bunny/cmd/bunny/cli"
	"github.com/bureau-foundation/bunny/lib/bundle"
	"github.com/bureau-foundation/bunny/lib/sealed"
	"github.com/bureau-foundation/bunny/lib/secret"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	failedStyle = cellStyle.Foreground(lipgloss.Color("9"))
)

func inspectCommand(stdout io.Writer) *cli.Command {
	var (
		identityFile string
		verify       bool
	)
	return &cli.Command{
		Name:    "inspect",
		Summary: "List the assets in a bundle file",
		Usage:   "bunny inspect [flags] <bundle>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
			flagSet.StringVar(&identityFile, "identity", "", "age identity file for sealed bundles")
			flagSet.BoolVar(&verify, "verify", false, "decompress every asset and check its digest")
			return flagSet
		},
		Run: func(_ context.Context, args []string) error {
			if len(args) != 1 {
				return errors.New("exactly one bundle path is required")
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			isSealed := sealed.IsSealed(data)
			if isSealed {
				if identityFile == "" {
					return errors.New("bundle is sealed; pass --identity")
				}
				identity, err := secret.ReadFromPath(identityFile)
				if err != nil {
					return err
				}
				data, err = sealed.Unseal(data, identity)
				identity.Close()
				if err != nil {
					return err
				}
			}

			archive, err := bundle.Read(data)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "bundle %s  digest %s  sealed %t\n", archive.Name, archive.Digest.Short(), isSealed)
			fmt.Fprintln(stdout, entryTable(archive, verify))
			return nil
		},
	}
}

func entryTable(archive *bundle.Archive, verify bool) string {
	headers := []string{"NAME", "KIND", "COMPRESSION", "SIZE", "STORED", "DIGEST"}
	if verify {
		headers = append(headers, "CHECK")
	}
	var failed []bool
	rows := make([][]string, 0, archive.Len())
	for i, entry := range archive.Entries {
		row := []string{
			entry.Name,
			entry.Kind,
			entry.Compression.String(),
			strconv.FormatUint(uint64(entry.UncompressedSize), 10),
			strconv.FormatUint(uint64(entry.CompressedSize), 10),
			entry.Digest.Short(),
		}
		bad := false
		if verify {
			check := "ok"
			if _, err := archive.Extract(i); err != nil {
				check, bad = err.Error(), true
			}
			row = append(row, check)
		}
		rows = append(rows, row)
		failed = append(failed, bad)
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(failed) && failed[row]:
				return failedStyle
			default:
				return cellStyle
			}
		}).
		String()
}
