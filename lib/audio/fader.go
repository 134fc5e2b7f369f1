// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package audio

import (
	"math"
	"sync/atomic"
	"time"
)

// Fader moves a gain toward a target at a fixed rate. The loop
// goroutine calls Update and SetTarget; the mixer reads Value from
// its own goroutine.
type Fader struct {
	value    atomic.Uint64
	stopping atomic.Bool

	target float64
	// speed is gain units per second.
	speed float64
}

// NewFader returns a fader at initial that moves speed units per
// second.
func NewFader(initial, speed float64) *Fader {
	fader := &Fader{target: initial, speed: speed}
	fader.store(initial)
	return fader
}

// SetTarget sets the gain to move toward.
func (f *Fader) SetTarget(target float64) {
	f.target = target
}

// Stop fades to silence; once there, the voice ends.
func (f *Fader) Stop() {
	f.target = 0
	f.stopping.Store(true)
}

// Update advances the fade by delta.
func (f *Fader) Update(delta time.Duration) {
	current := f.Value()
	step := f.speed * delta.Seconds()
	switch {
	case current < f.target:
		f.store(math.Min(current+step, f.target))
	case current > f.target:
		f.store(math.Max(current-step, f.target))
	}
}

// Value returns the current gain.
func (f *Fader) Value() float64 {
	return math.Float64frombits(f.value.Load())
}

// Finished reports whether Stop was called and the gain reached zero.
func (f *Fader) Finished() bool {
	return f.stopping.Load() && f.Value() == 0
}

func (f *Fader) store(value float64) {
	f.value.Store(math.Float64bits(value))
}
