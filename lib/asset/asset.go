// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package asset

import (
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
)

// Asset kinds as recorded in bundle indexes.
const (
	KindClip  = "clip"
	KindSfx   = "sfx"
	KindLoop  = "loop"
	KindMusic = "music"
	KindText  = "text"
	KindRaw   = "raw"
)

// Clip is decoded PCM audio held in memory.
type Clip struct {
	Name   string
	Format beep.Format
	Buffer *beep.Buffer
}

// Duration returns the clip length.
func (c *Clip) Duration() time.Duration {
	return c.Format.SampleRate.D(c.Buffer.Len())
}

// Streamer returns a fresh streamer over the whole clip. Each call is
// independent, so one clip can play on several voices at once.
func (c *Clip) Streamer() beep.StreamSeeker {
	return c.Buffer.Streamer(0, c.Buffer.Len())
}

// Range is an inclusive interval sampled uniformly.
type Range struct {
	Min float64 `json:"min" cbor:"min"`
	Max float64 `json:"max" cbor:"max"`
}

// Pick returns a value in [Min, Max]. An empty or inverted range
// returns Min.
func (r Range) Pick(rng *rand.Rand) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// SfxGroup is a one-shot effect that picks a random clip and random
// volume and pitch each time it plays.
type SfxGroup struct {
	Name     string
	Clips    []*Clip
	Volume   Range
	Pitch    Range
	Priority int
}

// PickClip returns a random clip, or nil for an empty group.
func (g *SfxGroup) PickClip(rng *rand.Rand) *Clip {
	if len(g.Clips) == 0 {
		return nil
	}
	return g.Clips[rng.IntN(len(g.Clips))]
}

// LoopGroup is a looping effect. Playback starts at the bottom of each
// range; a fader moves the volume from there.
type LoopGroup struct {
	Name     string
	Clip     *Clip
	Volume   Range
	Pitch    Range
	Priority int
}

// MusicGroup is a set of music tracks played at a fixed volume.
type MusicGroup struct {
	Name   string
	Tracks []*Clip
	Volume float64
}

// Text is a UTF-8 text asset.
type Text struct {
	Name string
	Body string
}

// Blob is an asset kept as raw bytes.
type Blob struct {
	Name string
	Data []byte
}
