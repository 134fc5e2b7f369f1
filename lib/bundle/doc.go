// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bundle implements the bunny bundle container: a single
// downloadable file holding many named, individually compressed
// assets.
//
// Layout (all integers little-endian):
//
//	magic    [8]byte   "BUNNYB" + version byte + reserved zero byte
//	indexLen uint32    length of the CBOR index that follows
//	index    []byte    CBOR-encoded Index (lib/codec, deterministic)
//	data     []byte    asset payloads, concatenated in index order
//
// Each index entry records the asset name, its kind (interpreted by
// lib/asset), the compression tag, both sizes, and a BLAKE3 keyed
// digest of the uncompressed payload. Payload offsets are not stored;
// they follow from the running sum of compressed sizes, and [Read]
// rejects an archive whose sizes do not add up to the data section.
//
// Digests are computed over uncompressed bytes, so recompressing a
// bundle with a different codec leaves every asset digest unchanged.
// The archive digest is the keyed hash of the encoded index, which
// commits to every asset digest and therefore to the whole bundle.
//
// Asset names are unique only up to case in practice; the container
// does not enforce it. The loader resolves duplicates last-write-wins.
//
// A [Manifest] describes a bundle on disk for `bunny pack`; sealed
// bundles (lib/sealed) wrap the finished container in age encryption.
package bundle
