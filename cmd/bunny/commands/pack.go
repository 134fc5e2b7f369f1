// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/bunny/cmd/bunny/cli"
	"github.com/bureau-foundation/bunny/lib/asset"
	"github.com/bureau-foundation/bunny/lib/bundle"
)

func packCommand(stdout io.Writer) *cli.Command {
	var outDir string
	return &cli.Command{
		Name:    "pack",
		Summary: "Build a bundle from a manifest",
		Description: `Compile every asset a manifest lists and write the bundle.

The output file is named after the manifest's bundle name with no
extension, so a directory of packed bundles can be served as-is with
'bunny serve'.`,
		Usage: "bunny pack [flags] <manifest.yaml>",
		Examples: []cli.Example{
			{Description: "Pack into the served directory", Command: "bunny pack --out-dir ~/.cache/bunny/bundles sfx/bundle.yaml"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("pack", pflag.ContinueOnError)
			flagSet.StringVarP(&outDir, "out-dir", "o", ".", "directory to write the bundle into")
			return flagSet
		},
		Run: func(_ context.Context, args []string) error {
			if len(args) != 1 {
				return errors.New("exactly one manifest path is required")
			}
			manifest, err := bundle.LoadManifest(args[0])
			if err != nil {
				return err
			}
			encoded, err := manifest.Build(filepath.Dir(args[0]), asset.Compile)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			path := filepath.Join(outDir, manifest.Name)
			if err := os.WriteFile(path, encoded, 0o644); err != nil {
				return err
			}

			sealedTo := ""
			if len(manifest.SealTo) > 0 {
				sealedTo = fmt.Sprintf(", sealed to %d recipient(s)", len(manifest.SealTo))
			}
			fmt.Fprintf(stdout, "packed %d assets into %s (%d bytes%s)\n",
				len(manifest.Assets), path, len(encoded), sealedTo)
			return nil
		},
	}
}
