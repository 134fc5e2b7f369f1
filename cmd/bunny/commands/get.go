// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"reflect"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/pkg/profile"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/bunny/cmd/bunny/cli"
	"github.com/bureau-foundation/bunny/lib/asset"
	"github.com/bureau-foundation/bunny/lib/bunny"
	"github.com/bureau-foundation/bunny/lib/clock"
)

// maxDetailWidth bounds the detail column so long error chains do not
// blow out the table.
const maxDetailWidth = 96

func getCommand(stdout io.Writer) *cli.Command {
	var (
		configPath  string
		basePath    string
		profileMode string
		profileDir  string
	)
	return &cli.Command{
		Name:    "get",
		Summary: "Load assets by reference and report what they decoded to",
		Description: `Load one or more bundle/asset references through the full loader:
fetch, parse, decode and cache, with every reference polled on the
tick scheduler. References into the same bundle share one download.

Exits 1 if any reference fails to load.`,
		Usage: "bunny get [flags] <bundle/asset>...",
		Examples: []cli.Example{
			{Description: "Load two assets from one bundle", Command: "bunny get sfx/LaserGroup sfx/Laser1"},
			{Description: "Load from a local directory of packed bundles", Command: "bunny get --base ./out music/Theme"},
			{Description: "Profile the decode path", Command: "bunny get --profile cpu --profile-dir /tmp music/Theme"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("get", pflag.ContinueOnError)
			cli.ConfigFlag(flagSet, &configPath)
			flagSet.StringVar(&basePath, "base", "", "base path or URL for bundles (default: bundles.base_path)")
			flagSet.StringVar(&profileMode, "profile", "", "write a cpu, mem or trace profile")
			flagSet.StringVar(&profileDir, "profile-dir", ".", "directory for --profile output")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			references, err := parseReferences(args)
			if err != nil {
				return err
			}
			cfg, err := cli.LoadConfig(configPath)
			if err != nil {
				return err
			}
			logger := cli.NewLogger(cfg).With("command", "get")

			if profileMode != "" {
				mode, err := profileOption(profileMode)
				if err != nil {
					return err
				}
				defer profile.Start(mode, profile.ProfilePath(profileDir), profile.Quiet, profile.NoShutdownHook).Stop()
			}

			loaders, err := newStack(cfg, basePath, logger)
			if err != nil {
				return err
			}
			defer loaders.Close()

			requests := make([]*bunny.LoadRequest[any], len(references))
			for i, reference := range references {
				requests[i] = bunny.LoadAssetAsync(loaders.loader, reference, loaders.basePath)
				loaders.scheduler.Spawn(requests[i])
			}
			if err := loaders.scheduler.RunUntilIdle(ctx, clock.Real(), cfg.TickRate()); err != nil {
				return err
			}

			failures := 0
			rows := make([][]string, len(requests))
			for i, request := range requests {
				if request.Err() != nil {
					failures++
					rows[i] = []string{references[i].String(), "failed", "", ansi.Truncate(request.Err().Error(), maxDetailWidth, "…")}
					continue
				}
				value := request.Asset()
				rows[i] = []string{references[i].String(), "ok", typeName(value), describe(value)}
			}
			fmt.Fprintln(stdout, table.New().
				Border(lipgloss.NormalBorder()).
				Headers("REFERENCE", "STATUS", "TYPE", "DETAIL").
				Rows(rows...).
				StyleFunc(func(row, _ int) lipgloss.Style {
					switch {
					case row == table.HeaderRow:
						return headerStyle
					case row >= 0 && row < len(requests) && requests[row].Err() != nil:
						return failedStyle
					default:
						return cellStyle
					}
				}).
				String())

			if failures > 0 {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

func profileOption(mode string) (func(*profile.Profile), error) {
	switch mode {
	case "cpu":
		return profile.CPUProfile, nil
	case "mem":
		return profile.MemProfile, nil
	case "trace":
		return profile.TraceProfile, nil
	default:
		return nil, fmt.Errorf("unknown profile mode %q (want cpu, mem or trace)", mode)
	}
}

func typeName(value any) string {
	if value == nil {
		return "nil"
	}
	return reflect.TypeOf(value).String()
}

// describe summarizes a decoded asset in a few words.
func describe(value any) string {
	switch v := value.(type) {
	case *asset.Clip:
		return fmt.Sprintf("%s at %d Hz", v.Duration(), v.Format.SampleRate)
	case *asset.SfxGroup:
		return fmt.Sprintf("%d clips, volume %g-%g, pitch %g-%g",
			len(v.Clips), v.Volume.Min, v.Volume.Max, v.Pitch.Min, v.Pitch.Max)
	case *asset.LoopGroup:
		return fmt.Sprintf("loop %s, volume %g-%g", v.Clip.Name, v.Volume.Min, v.Volume.Max)
	case *asset.MusicGroup:
		return fmt.Sprintf("%d tracks at volume %g", len(v.Tracks), v.Volume)
	case *asset.Text:
		return fmt.Sprintf("%d bytes of text", len(v.Body))
	case *asset.Blob:
		return fmt.Sprintf("%d bytes", len(v.Data))
	default:
		return ""
	}
}
