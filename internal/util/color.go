// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	noticeStyle = lipgloss.NewStyle().Faint(true)
)

// SupportsColor checks if f is a terminal that understands ANSI color codes
func SupportsColor(f *os.File) bool {
	if f == nil || !term.IsTerminal(int(f.Fd())) { // #nosec G115 - file descriptors are small integers
		return false
	}

	termEnv := os.Getenv("TERM")
	if termEnv == "" || termEnv == "dumb" {
		return false
	}

	return os.Getenv("NO_COLOR") == ""
}

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd())) // #nosec G115
}

// FormatError renders captured script stderr for f, in red when f supports color.
func FormatError(f *os.File, text string) string {
	if text == "" || !SupportsColor(f) {
		return text
	}
	return renderLines(errorStyle, text)
}

// FormatNotice renders a dimmed informational line (REPL banners, watch events).
func FormatNotice(f *os.File, text string) string {
	if !SupportsColor(f) {
		return text
	}
	return renderLines(noticeStyle, text)
}

// renderLines styles each line on its own; rendering a multi-line block
// would pad every line to the widest one.
func renderLines(style lipgloss.Style, text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
