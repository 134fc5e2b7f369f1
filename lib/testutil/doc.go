// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// safety valve so that a broken fetch goroutine fails a test instead of
// hanging it. They are the only place tests touch the wall clock; all
// other timing goes through lib/clock.
//
// [UniqueID] hands out distinct bundle and asset names so tests that
// share a loader never collide in its cache.
//
// Helpers call t.Fatalf on failure.
package testutil
