// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tick is the cooperative frame loop that drives load
// requests and audio fades. All tasks run on the goroutine calling
// Tick (or Run), so they may touch single-goroutine state such as a
// bunny.Loader without locks. Other goroutines hand work to the loop
// with Do.
package tick

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/bunny/lib/clock"
)

// Task is polled once per tick until Poll returns false.
// *bunny.LoadRequest satisfies it.
type Task interface {
	Poll() bool
}

// UpdateFunc is a task that wants the time since the previous tick.
// It is called once per tick until it returns false.
type UpdateFunc func(delta time.Duration) bool

// Scheduler runs tasks once per tick. Spawn and Tick must be called
// from the loop goroutine; Do is safe from any goroutine.
type Scheduler struct {
	tasks  []UpdateFunc
	logger *slog.Logger

	mu     sync.Mutex
	queued []func()
}

// New creates an empty scheduler. A nil logger selects slog.Default().
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{logger: logger}
}

// Spawn adds task; it is first polled on the next tick.
func (s *Scheduler) Spawn(task Task) {
	s.tasks = append(s.tasks, func(time.Duration) bool { return task.Poll() })
}

// SpawnUpdate adds an update function; it is first called on the next
// tick.
func (s *Scheduler) SpawnUpdate(update UpdateFunc) {
	s.tasks = append(s.tasks, update)
}

// Await spawns task and returns a channel closed once it finishes.
func (s *Scheduler) Await(task Task) <-chan struct{} {
	finished := make(chan struct{})
	s.SpawnUpdate(func(time.Duration) bool {
		if task.Poll() {
			return true
		}
		close(finished)
		return false
	})
	return finished
}

// Do queues fn to run on the loop goroutine at the start of the next
// tick.
func (s *Scheduler) Do(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queued = append(s.queued, fn)
}

// Len returns the number of live tasks.
func (s *Scheduler) Len() int {
	return len(s.tasks)
}

// Tick runs queued functions, then every task once. Tasks spawned
// during the tick wait for the next one.
func (s *Scheduler) Tick(delta time.Duration) {
	s.mu.Lock()
	queued := s.queued
	s.queued = nil
	s.mu.Unlock()
	for _, fn := range queued {
		fn()
	}

	current := s.tasks
	s.tasks = nil
	kept := current[:0]
	for _, task := range current {
		if task(delta) {
			kept = append(kept, task)
		}
	}
	s.tasks = append(kept, s.tasks...)
}

// Run ticks every interval until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context, clk clock.Clock, interval time.Duration) error {
	return s.run(ctx, clk, interval, false)
}

// RunUntilIdle ticks every interval until no tasks remain or ctx is
// cancelled. Functions queued with Do do not count as tasks.
func (s *Scheduler) RunUntilIdle(ctx context.Context, clk clock.Clock, interval time.Duration) error {
	return s.run(ctx, clk, interval, true)
}

func (s *Scheduler) run(ctx context.Context, clk clock.Clock, interval time.Duration, untilIdle bool) error {
	ticker := clk.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Debug("scheduler running", "interval", interval, "until_idle", untilIdle)
	last := clk.Now()
	for {
		if untilIdle && s.Len() == 0 {
			s.Tick(0)
			if s.Len() == 0 {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			s.Tick(now.Sub(last))
			last = now
		}
	}
}
