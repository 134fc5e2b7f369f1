// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package audio

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/bureau-foundation/bunny/lib/asset"
	"github.com/bureau-foundation/bunny/lib/bunny"
	"github.com/bureau-foundation/bunny/lib/tick"
)

// Config holds configuration for a Manager.
type Config struct {
	// Loader resolves references. Required.
	Loader *bunny.Loader

	// Scheduler polls load requests and drives loop fades. Required.
	Scheduler *tick.Scheduler

	// Player receives voices. Required.
	Player Player

	// BasePath is joined with each bundle name to form its URL.
	BasePath string

	// Rand picks clips, volumes and pitches. Defaults to a randomly
	// seeded source.
	Rand *rand.Rand

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Manager plays sound groups by reference. Its methods must be called
// from the scheduler's goroutine.
type Manager struct {
	loader    *bunny.Loader
	scheduler *tick.Scheduler
	player    Player
	basePath  string
	rng       *rand.Rand
	logger    *slog.Logger

	// Disabled makes every play call a no-op. Sounds whose load is
	// already in flight are dropped when it resolves.
	Disabled bool
}

// New creates a Manager.
func New(config Config) (*Manager, error) {
	if config.Loader == nil || config.Scheduler == nil || config.Player == nil {
		return nil, errors.New("audio: Loader, Scheduler and Player are required")
	}
	rng := config.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		loader:    config.Loader,
		scheduler: config.Scheduler,
		player:    config.Player,
		basePath:  config.BasePath,
		rng:       rng,
		logger:    logger,
	}, nil
}

// Play plays one random clip of an effect group.
func (m *Manager) Play(ref bunny.Reference[*asset.SfxGroup]) {
	if m.Disabled {
		return
	}
	request := bunny.LoadAssetAsync(m.loader, ref, m.basePath)
	whenLoaded(m, request, "SFX", func(group *asset.SfxGroup) {
		clip := group.PickClip(m.rng)
		if clip == nil {
			return
		}
		m.player.Play(Voice{
			Clip:     clip,
			Volume:   group.Volume.Pick(m.rng),
			Pitch:    group.Pitch.Pick(m.rng),
			Priority: group.Priority,
			Bus:      BusSfx,
		})
	})
}

// PlayLoop starts a looping effect whose gain follows fader. The loop
// ends after fader.Stop once the fade reaches silence.
func (m *Manager) PlayLoop(ref bunny.Reference[*asset.LoopGroup], fader *Fader) {
	if m.Disabled {
		return
	}
	request := bunny.LoadAssetAsync(m.loader, ref, m.basePath)
	whenLoaded(m, request, "Loop", func(group *asset.LoopGroup) {
		if group.Clip == nil {
			return
		}
		m.player.Play(Voice{
			Clip:     group.Clip,
			Volume:   group.Volume.Min,
			Pitch:    group.Pitch.Min,
			Loop:     true,
			Priority: group.Priority,
			Bus:      BusSfx,
			Fade:     fader,
		})
		m.scheduler.SpawnUpdate(func(delta time.Duration) bool {
			fader.Update(delta)
			return !fader.Finished()
		})
	})
}

// PlayMusic loops the first track of a music group.
func (m *Manager) PlayMusic(ref bunny.Reference[*asset.MusicGroup]) {
	if m.Disabled {
		return
	}
	request := bunny.LoadAssetAsync(m.loader, ref, m.basePath)
	whenLoaded(m, request, "Music", func(group *asset.MusicGroup) {
		if len(group.Tracks) == 0 {
			return
		}
		m.player.Play(Voice{
			Clip:   group.Tracks[0],
			Volume: group.Volume,
			Pitch:  1,
			Loop:   true,
			Bus:    BusMusic,
		})
	})
}

// whenLoaded polls request on the scheduler and calls play with the
// asset, or logs why there is none.
func whenLoaded[T comparable](m *Manager, request *bunny.LoadRequest[T], label string, play func(T)) {
	var zero T
	m.scheduler.SpawnUpdate(func(time.Duration) bool {
		if request.Poll() {
			return true
		}
		if m.Disabled {
			return false
		}
		if value := request.Asset(); value != zero {
			play(value)
			return false
		}
		m.logger.Error("failed to load "+label,
			"asset", request.Key().String(),
			"error", request.Err(),
			"mismatched", request.Mismatched(),
		)
		return false
	})
}
