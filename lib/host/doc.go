// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package host provides the engine-side bundle facilities the loader
// consumes: a [Parser] that turns downloaded bytes into bundles
// (unsealing them first when needed), a [Registry] of bundles resident
// in memory, and a decode-all pass that runs on its own goroutine.
//
// Parsed bundles are registered as resident, the same way an engine
// keeps loaded bundles around. A later request for a bundle after a
// loader reset therefore decodes the resident copy instead of fetching
// it again, until the host unloads it.
package host
