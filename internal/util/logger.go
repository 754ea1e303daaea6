// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import (
	"io"
	"log/slog"
	"os"
)

// Logger is the bridge-wide logger. It discards everything until InitLogger
// is called, so embedding hosts that never configure logging get no noise.
var Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// InitLogger initializes the global logger with appropriate log level.
// Set JSBRIDGE_DEBUG=1 environment variable to enable debug logging.
// Script output owns stdout, so log lines go to w (normally os.Stderr).
func InitLogger(w io.Writer) {
	level := slog.LevelInfo

	if os.Getenv("JSBRIDGE_DEBUG") != "" {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Drop time and level for cleaner CLI output
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	})

	Logger = slog.New(handler)
}

// Debug logs a debug message (only shown when JSBRIDGE_DEBUG is set)
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}
