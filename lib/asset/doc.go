// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package asset turns bundle payloads into typed game assets.
//
// Every bundle entry carries a kind:
//
//   - clip: a PCM WAV file, decoded into a [Clip] backed by a
//     beep.Buffer
//   - sfx, loop, music: group definitions ([SfxGroup], [LoopGroup],
//     [MusicGroup]) naming clips in the same bundle plus playback
//     ranges
//   - text: UTF-8 text, decoded into a [Text]
//   - raw: anything else, kept as a [Blob]
//
// Groups are authored as JSONC and stored as CBOR; [Compile] performs
// that conversion when a bundle is packed. [DecodeArchive] decodes
// clips and other leaf assets first, then resolves groups against the
// decoded clips by case-insensitive name.
package asset
