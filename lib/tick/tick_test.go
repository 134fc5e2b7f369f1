// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tick

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/bureau-foundation/bunny/lib/clock"
	"github.com/bureau-foundation/bunny/lib/testutil"
)

// countdown is pending for n polls.
type countdown struct {
	remaining int
	polls     int
}

func (c *countdown) Poll() bool {
	c.polls++
	c.remaining--
	return c.remaining > 0
}

func newScheduler() *Scheduler {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestTickPollsUntilDone(t *testing.T) {
	scheduler := newScheduler()
	short, long := &countdown{remaining: 1}, &countdown{remaining: 3}
	scheduler.Spawn(short)
	scheduler.Spawn(long)

	for range 5 {
		scheduler.Tick(16 * time.Millisecond)
	}
	if short.polls != 1 || long.polls != 3 {
		t.Errorf("polls = %d/%d, want 1/3", short.polls, long.polls)
	}
	if scheduler.Len() != 0 {
		t.Errorf("Len = %d after all tasks finished", scheduler.Len())
	}
}

func TestTaskSpawnedDuringTickWaits(t *testing.T) {
	scheduler := newScheduler()
	child := &countdown{remaining: 1}
	scheduler.SpawnUpdate(func(time.Duration) bool {
		scheduler.Spawn(child)
		return false
	})

	scheduler.Tick(0)
	if child.polls != 0 {
		t.Fatal("child polled in the tick that spawned it")
	}
	scheduler.Tick(0)
	if child.polls != 1 {
		t.Errorf("child polls = %d, want 1", child.polls)
	}
}

func TestUpdateReceivesDelta(t *testing.T) {
	scheduler := newScheduler()
	var total time.Duration
	scheduler.SpawnUpdate(func(delta time.Duration) bool {
		total += delta
		return true
	})
	scheduler.Tick(10 * time.Millisecond)
	scheduler.Tick(6 * time.Millisecond)
	if total != 16*time.Millisecond {
		t.Errorf("total delta = %v", total)
	}
}

func TestDoRunsOnNextTick(t *testing.T) {
	scheduler := newScheduler()
	ran := make(chan struct{})
	go scheduler.Do(func() { close(ran) })

	testutil.Eventually(t, 5*time.Second, func() bool {
		scheduler.Tick(0)
		select {
		case <-ran:
			return true
		default:
			return false
		}
	}, "queued function")
}

func TestAwait(t *testing.T) {
	scheduler := newScheduler()
	finished := scheduler.Await(&countdown{remaining: 2})
	scheduler.Tick(0)
	select {
	case <-finished:
		t.Fatal("Await closed early")
	default:
	}
	scheduler.Tick(0)
	testutil.RequireClosed(t, finished, time.Second, "Await channel")
}

func TestRunUntilIdle(t *testing.T) {
	fake := clock.Fake(time.Unix(0, 0))
	scheduler := newScheduler()
	task := &countdown{remaining: 3}
	scheduler.Spawn(task)

	result := make(chan error, 1)
	go func() {
		result <- scheduler.RunUntilIdle(context.Background(), fake, 16*time.Millisecond)
	}()

	fake.WaitForTimers(1)
	// Ticks dropped while the loop is busy are harmless; keep
	// advancing until it exits.
	testutil.Eventually(t, 5*time.Second, func() bool {
		select {
		case err := <-result:
			if err != nil {
				t.Errorf("RunUntilIdle: %v", err)
			}
			return true
		default:
			fake.Advance(16 * time.Millisecond)
			return false
		}
	}, "RunUntilIdle to return")
}

func TestRunStopsOnCancel(t *testing.T) {
	fake := clock.Fake(time.Unix(0, 0))
	scheduler := newScheduler()
	ctx, cancel := context.WithCancel(context.Background())

	result := make(chan error, 1)
	go func() { result <- scheduler.Run(ctx, fake, time.Second) }()

	fake.WaitForTimers(1)
	cancel()
	err := testutil.RequireReceive(t, result, 5*time.Second, "Run to return")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}
