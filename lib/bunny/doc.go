// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bunny loads named assets out of remote bundles, caching every
// decoded asset and coalescing concurrent requests for the same bundle
// into a single download.
//
// A [Loader] owns two pieces of state: a [Cache] of decoded assets
// (bundle name to asset name to object) and a [Coordinator] of
// in-flight downloads (bundle name to [Download]). Both key on names
// compared case-insensitively; "Music" and "music" are the same
// bundle. The host creates one Loader per runtime and calls
// [Loader.Reset] at its (re)initialization boundary.
//
// Callers obtain a [LoadRequest] from [LoadAssetAsync]. A request that
// hits the cache is done on construction. Otherwise it attaches to the
// coordinator's download for the bundle, starting one if none exists,
// and the caller's scheduler calls [LoadRequest.Poll] once per tick
// until it returns false. Every poll advances the shared download by
// at most one step:
//
//	Fetching -> Parsing -> Decoding -> Complete
//	               \-> Failed
//
// On completion the decoded assets are written to the cache and the
// download leaves the coordinator in the same step, so no waiter can
// observe a partially populated bundle. A failed download stays
// registered until a poll observes it; every waiter holds a pointer to
// the same Download, so all of them report the identical error.
//
// The package is cooperative and single-goroutine: Loader, Cache,
// Coordinator and LoadRequest must be driven from one goroutine
// (lib/tick provides the loop). Transport and decoding happen behind
// the [Fetcher], [Parser], [Bundle] and [Registry] interfaces, whose
// operations run in the background and report readiness through
// non-blocking Done methods. Production implementations live in
// lib/fetch and lib/host.
package bunny
