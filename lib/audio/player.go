// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package audio

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/bureau-foundation/bunny/lib/asset"
)

// Bus selects the gain stage a voice is mixed through.
type Bus int

const (
	BusSfx Bus = iota
	BusMusic
)

// Voice is one sound to start.
type Voice struct {
	Clip     *asset.Clip
	Volume   float64
	Pitch    float64
	Loop     bool
	Priority int
	Bus      Bus

	// Fade, when set, scales the voice continuously and ends it once
	// the fader finishes.
	Fade *Fader
}

// Player starts voices.
type Player interface {
	Play(voice Voice)
}

// resampleQuality is beep's resampler quality (1 to 64).
const resampleQuality = 4

// MixerPlayer mixes voices into a single beep stream at a fixed
// sample rate. Play may be called from any goroutine while a sink
// streams from it.
type MixerPlayer struct {
	sampleRate beep.SampleRate

	mu    sync.Mutex
	mixer *beep.Mixer

	master, sfx, music atomic.Uint64
}

// NewMixerPlayer returns a player producing audio at sampleRate with
// every gain at 1.
func NewMixerPlayer(sampleRate beep.SampleRate) *MixerPlayer {
	player := &MixerPlayer{sampleRate: sampleRate, mixer: &beep.Mixer{}}
	for _, gain := range []*atomic.Uint64{&player.master, &player.sfx, &player.music} {
		gain.Store(math.Float64bits(1))
	}
	return player
}

// Format is the output format.
func (p *MixerPlayer) Format() beep.Format {
	return beep.Format{SampleRate: p.sampleRate, NumChannels: 2, Precision: 2}
}

// SetMasterVolume sets the gain applied to every voice.
func (p *MixerPlayer) SetMasterVolume(volume float64) {
	p.master.Store(math.Float64bits(volume))
}

// SetBusVolume sets the gain of one bus.
func (p *MixerPlayer) SetBusVolume(bus Bus, volume float64) {
	p.bus(bus).Store(math.Float64bits(volume))
}

func (p *MixerPlayer) bus(bus Bus) *atomic.Uint64 {
	if bus == BusMusic {
		return &p.music
	}
	return &p.sfx
}

// Play implements Player.
func (p *MixerPlayer) Play(voice Voice) {
	if voice.Clip == nil {
		return
	}
	var streamer beep.Streamer = voice.Clip.Streamer()
	if voice.Loop {
		streamer = beep.Loop(-1, voice.Clip.Streamer())
	}

	pitch := voice.Pitch
	if pitch <= 0 {
		pitch = 1
	}
	ratio := float64(voice.Clip.Format.SampleRate) / float64(p.sampleRate) * pitch
	if ratio != 1 {
		streamer = beep.ResampleRatio(resampleQuality, ratio, streamer)
	}

	if voice.Volume <= 0 {
		streamer = &effects.Volume{Streamer: streamer, Base: 2, Silent: true}
	} else if voice.Volume != 1 {
		streamer = &effects.Volume{Streamer: streamer, Base: 2, Volume: math.Log2(voice.Volume)}
	}

	bus := p.bus(voice.Bus)
	streamer = &gainStreamer{
		Streamer: streamer,
		gain: func() float64 {
			return math.Float64frombits(p.master.Load()) * math.Float64frombits(bus.Load())
		},
	}
	if voice.Fade != nil {
		streamer = &fadeStreamer{Streamer: streamer, fader: voice.Fade}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.mixer.Add(streamer)
}

// Voices returns the number of voices still playing.
func (p *MixerPlayer) Voices() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mixer.Len()
}

// Stream implements beep.Streamer. It never ends; silence fills the
// gaps between voices.
func (p *MixerPlayer) Stream(samples [][2]float64) (int, bool) {
	p.mu.Lock()
	n, _ := p.mixer.Stream(samples)
	p.mu.Unlock()
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}

// Err implements beep.Streamer.
func (p *MixerPlayer) Err() error {
	return nil
}

// gainStreamer scales samples by a gain read once per buffer.
type gainStreamer struct {
	beep.Streamer
	gain func() float64
}

func (g *gainStreamer) Stream(samples [][2]float64) (int, bool) {
	n, ok := g.Streamer.Stream(samples)
	scale(samples[:n], g.gain())
	return n, ok
}

// fadeStreamer applies a fader and ends when it finishes.
type fadeStreamer struct {
	beep.Streamer
	fader *Fader
}

func (f *fadeStreamer) Stream(samples [][2]float64) (int, bool) {
	if f.fader.Finished() {
		return 0, false
	}
	n, ok := f.Streamer.Stream(samples)
	scale(samples[:n], f.fader.Value())
	return n, ok
}

func scale(samples [][2]float64, gain float64) {
	if gain == 1 {
		return
	}
	for i := range samples {
		samples[i][0] *= gain
		samples[i][1] *= gain
	}
}
