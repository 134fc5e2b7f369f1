// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/bureau-foundation/bunny/lib/config"
)

// NewLogger builds the process logger from the log section of cfg.
// Format "auto" uses text when stderr is a terminal and JSON when it
// is piped, so scripted runs produce machine-parseable logs.
func NewLogger(cfg *config.Config) *slog.Logger {
	return newLogger(os.Stderr, cfg.Log.Format, cfg.LogLevel(), term.IsTerminal(int(os.Stderr.Fd())))
}

func newLogger(w io.Writer, format string, level slog.Level, terminal bool) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	switch {
	case format == "text", format != "json" && terminal:
		return slog.New(slog.NewTextHandler(w, options))
	default:
		return slog.New(slog.NewJSONHandler(w, options))
	}
}
