// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/bunny/cmd/bunny/cli"
	"github.com/bureau-foundation/bunny/lib/asset"
	"github.com/bureau-foundation/bunny/lib/audio"
	"github.com/bureau-foundation/bunny/lib/bunny"
	"github.com/bureau-foundation/bunny/lib/clock"
)

func renderCommand(stdout io.Writer) *cli.Command {
	var (
		configPath string
		basePath   string
		outPath    string
		duration   time.Duration
	)
	return &cli.Command{
		Name:    "render",
		Summary: "Play a sound reference into a WAV file",
		Description: `Load a clip, effect, loop or music reference and play it through the
same mixer a game host uses, writing the mixed output to a WAV file.
Effects pick their clip, volume and pitch at random as they would in
game.`,
		Usage: "bunny render [flags] --out <file.wav> <bundle/asset>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("render", pflag.ContinueOnError)
			cli.ConfigFlag(flagSet, &configPath)
			flagSet.StringVar(&basePath, "base", "", "base path or URL for bundles (default: bundles.base_path)")
			flagSet.StringVarP(&outPath, "out", "o", "", "WAV file to write")
			flagSet.DurationVarP(&duration, "duration", "d", 3*time.Second, "length of audio to render")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return errors.New("exactly one bundle/asset reference is required")
			}
			if outPath == "" {
				return errors.New("--out is required")
			}
			if duration <= 0 {
				return fmt.Errorf("--duration must be positive, got %s", duration)
			}
			references, err := parseReferences(args)
			if err != nil {
				return err
			}
			reference := references[0]

			cfg, err := cli.LoadConfig(configPath)
			if err != nil {
				return err
			}
			logger := cli.NewLogger(cfg).With("command", "render")
			loaders, err := newStack(cfg, basePath, logger)
			if err != nil {
				return err
			}
			defer loaders.Close()

			// Resolve first so the play helpers below hit the cache.
			value, err := bunny.LoadAssetAsync(loaders.loader, reference, loaders.basePath).
				Wait(ctx, clock.Real(), cfg.TickRate())
			if err != nil {
				return err
			}

			player := audio.NewMixerPlayer(beep.SampleRate(cfg.Audio.SampleRate))
			manager, err := audio.New(audio.Config{
				Loader:    loaders.loader,
				Scheduler: loaders.scheduler,
				Player:    player,
				BasePath:  loaders.basePath,
				Logger:    logger,
			})
			if err != nil {
				return err
			}
			manager.Disabled = cfg.Audio.Disabled

			switch v := value.(type) {
			case *asset.Clip:
				player.Play(audio.Voice{Clip: v, Volume: 1, Pitch: 1})
			case *asset.SfxGroup:
				manager.Play(bunny.Ref[*asset.SfxGroup](reference.Bundle, reference.Asset))
			case *asset.LoopGroup:
				manager.PlayLoop(bunny.Ref[*asset.LoopGroup](reference.Bundle, reference.Asset), audio.NewFader(1, 0))
			case *asset.MusicGroup:
				manager.PlayMusic(bunny.Ref[*asset.MusicGroup](reference.Bundle, reference.Asset))
			default:
				return fmt.Errorf("%s is a %s, not a sound", reference, typeName(value))
			}
			loaders.scheduler.Tick(cfg.TickRate())

			file, err := os.Create(outPath)
			if err != nil {
				return err
			}
			format := player.Format()
			if err := wav.Encode(file, beep.Take(format.SampleRate.N(duration), player), format); err != nil {
				file.Close()
				return fmt.Errorf("encoding %s: %w", outPath, err)
			}
			if err := file.Close(); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "rendered %s of %s into %s (%d voices)\n", duration, reference, outPath, player.Voices())
			return nil
		},
	}
}
