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
	"github.com/bureau-foundation/bunny/lib/sealed"
)

func keygenCommand(stdout io.Writer) *cli.Command {
	var outPath string
	return &cli.Command{
		Name:    "keygen",
		Summary: "Generate an identity for sealed bundles",
		Description: `Generate an age keypair. The identity is written to --out with mode
0600 and is what keys.identity_file should point at. The public key is
printed; list it under seal_to in a bundle manifest.`,
		Usage: "bunny keygen --out <identity-file>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("keygen", pflag.ContinueOnError)
			flagSet.StringVarP(&outPath, "out", "o", "", "file to write the identity to (must not exist)")
			return flagSet
		},
		Run: func(_ context.Context, _ []string) error {
			if outPath == "" {
				return errors.New("--out is required")
			}
			keypair, err := sealed.GenerateKeypair()
			if err != nil {
				return err
			}
			defer keypair.Close()

			if err := os.MkdirAll(filepath.Dir(outPath), 0o700); err != nil {
				return err
			}
			file, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
			if err != nil {
				return err
			}
			fmt.Fprintf(file, "# public key: %s\n", keypair.PublicKey)
			if _, err := file.Write(keypair.PrivateKey.Bytes()); err != nil {
				file.Close()
				return err
			}
			if _, err := io.WriteString(file, "\n"); err != nil {
				file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			fmt.Fprintln(stdout, keypair.PublicKey)
			return nil
		},
	}
}
