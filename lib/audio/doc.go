// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package audio plays bundle-backed sound groups.
//
// [Manager] is the game-facing API: Play, PlayLoop and PlayMusic take
// typed references, start a load request, and hand the decoded group
// to a [Player] once the request resolves on the scheduler. Load
// failures are logged and the sound is skipped; nothing is retried.
//
// [MixerPlayer] is the production Player: a beep mixer with master,
// effects and music gain that any beep sink (a speaker, or a WAV
// encoder in `bunny render`) can pull samples from.
package audio
