// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides the injectable time source used by the tick
// scheduler, blocking request waits, and fetch timing.
//
// Production code takes a [Clock] and is handed [Real]. Tests hand in
// a [FakeClock] whose time only moves when [FakeClock.Advance] is
// called, so a scheduler running at 60 ticks per second can be driven
// one frame at a time without sleeping:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go scheduler.Run(ctx, fake, 60)
//	fake.WaitForTimers(1)              // the ticker is registered
//	fake.Advance(time.Second / 60)     // exactly one tick fires
//
// WaitForTimers closes the race between a goroutine registering its
// ticker and the test advancing time.
package clock
