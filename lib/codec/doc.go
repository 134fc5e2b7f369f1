// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the one CBOR configuration used for bundle
// metadata: the archive index written by `bunny pack` and the compiled
// payloads of sfx, loop, and music group assets.
//
// Encoding uses Core Deterministic Encoding (RFC 8949 §4.2), so packing
// the same manifest twice produces byte-identical indexes and therefore
// identical bundle digests.
//
// The struct tag documents the contract: `cbor` tags mark types that
// only ever live inside a bundle; `json` tags mark types that are also
// authored by hand (group definitions are written as JSONC and
// compiled to CBOR). fxamacker/cbor falls back to `json` tags, so one
// tag set serves both encodings.
package codec
