// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the small command framework behind the bunny binary:
// a [Command] tree with pflag flag sets, help output, and edit-distance
// suggestions for mistyped commands and flags. It also holds the
// helpers every subcommand shares for loading configuration and
// building a logger.
package cli
