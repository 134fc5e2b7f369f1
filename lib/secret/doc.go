// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds the age identity that unseals encrypted bundles.
//
// A [Buffer] lives outside the Go heap: it is mmap'd anonymously,
// mlock'd so it never reaches swap, and marked MADV_DONTDUMP so a crash
// dump of the game does not carry the key. Close zeroes and unmaps it.
// The garbage collector never sees the memory and cannot leave stray
// copies behind.
package secret
