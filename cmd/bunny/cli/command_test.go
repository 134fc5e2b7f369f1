// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestExecuteDispatchesToSubcommand(t *testing.T) {
	var called string
	var received []string
	root := &Command{
		Name: "bunny",
		Subcommands: []*Command{
			{Name: "pack", Run: func(_ context.Context, args []string) error { called = "pack"; return nil }},
			{
				Name: "keys",
				Subcommands: []*Command{
					{Name: "new", Run: func(_ context.Context, args []string) error {
						called, received = "keys new", args
						return nil
					}},
				},
			},
		},
	}

	if err := root.execute(context.Background(), []string{"keys", "new", "extra"}, io.Discard); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if called != "keys new" || len(received) != 1 || received[0] != "extra" {
		t.Errorf("dispatched to %q with %v", called, received)
	}
}

func TestExecuteParsesFlags(t *testing.T) {
	var out string
	command := &Command{
		Name: "pack",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("pack", pflag.ContinueOnError)
			flagSet.StringVarP(&out, "out-dir", "o", ".", "")
			return flagSet
		},
		Run: func(_ context.Context, args []string) error {
			if len(args) != 1 || args[0] != "bundle.yaml" {
				t.Errorf("args = %v", args)
			}
			return nil
		},
	}
	if err := command.execute(context.Background(), []string{"-o", "dist", "bundle.yaml"}, io.Discard); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out != "dist" {
		t.Errorf("out-dir = %q, want dist", out)
	}
}

func TestExecuteSuggestsCommand(t *testing.T) {
	root := &Command{
		Name: "bunny",
		Subcommands: []*Command{
			{Name: "inspect", Run: func(context.Context, []string) error { return nil }},
			{Name: "serve", Run: func(context.Context, []string) error { return nil }},
		},
	}
	err := root.execute(context.Background(), []string{"inspcet"}, io.Discard)
	if err == nil || !strings.Contains(err.Error(), `did you mean "inspect"`) {
		t.Errorf("error = %v, want suggestion", err)
	}
	err = root.execute(context.Background(), []string{"zzzzzzzz"}, io.Discard)
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %v, want no suggestion", err)
	}
}

func TestExecuteSuggestsFlag(t *testing.T) {
	var verify bool
	command := &Command{
		Name: "inspect",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
			flagSet.BoolVar(&verify, "verify", false, "")
			return flagSet
		},
		Run: func(context.Context, []string) error { return nil },
	}
	err := command.execute(context.Background(), []string{"--verfy"}, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "did you mean --verify") {
		t.Errorf("error = %v, want flag suggestion", err)
	}
}

func TestHelp(t *testing.T) {
	root := &Command{
		Name:        "bunny",
		Description: "Asset bundles.",
		Subcommands: []*Command{{Name: "serve", Summary: "Serve bundles"}},
	}
	var help bytes.Buffer
	if err := root.execute(context.Background(), []string{"--help"}, &help); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	for _, want := range []string{"Asset bundles.", "serve", "Serve bundles", "bunny <command> [flags]"} {
		if !strings.Contains(help.String(), want) {
			t.Errorf("help missing %q:\n%s", want, help.String())
		}
	}

	help.Reset()
	if err := root.execute(context.Background(), nil, &help); err == nil {
		t.Error("missing subcommand accepted")
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "abc", 3},
		{"serve", "serve", 0},
		{"serve", "sevre", 2},
		{"get", "gets", 1},
		{"kitten", "sitting", 3},
	}
	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}
