// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/aplane-algo/jsbridge/internal/bridge"
	"github.com/aplane-algo/jsbridge/internal/util"
	"github.com/aplane-algo/jsbridge/internal/version"
)

const (
	prompt     = "\033[32mjs>\033[0m "
	contPrompt = "\033[32m..>\033[0m "
)

// lineBuffer joins continuation lines (ending in a backslash) into one entry.
type lineBuffer struct {
	parts []string
}

// add appends line and reports whether the entry is complete.
func (b *lineBuffer) add(line string) (string, bool) {
	if strings.HasSuffix(line, `\`) {
		b.parts = append(b.parts, strings.TrimSuffix(line, `\`))
		return "", false
	}
	b.parts = append(b.parts, line)
	entry := strings.Join(b.parts, "\n")
	b.parts = b.parts[:0]
	return entry, true
}

func (b *lineBuffer) pending() bool {
	return len(b.parts) > 0
}

func (b *lineBuffer) reset() {
	b.parts = b.parts[:0]
}

// isExit reports whether entry is a REPL exit command.
func isExit(entry string) bool {
	switch strings.TrimSpace(entry) {
	case "quit", "exit", ".exit":
		return true
	}
	return false
}

func historyPath(config util.Config) string {
	if config.HistoryFile != "" {
		return config.HistoryFile
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".jsbridge_history")
}

// evalEntry runs one REPL entry as its own session, echoing its value.
func evalEntry(ctx context.Context, entry string) {
	if strings.TrimSpace(entry) == "" {
		return
	}
	runSession(ctx, bridge.Request{Source: entry, Name: "<repl>", Echo: true})
}

func startBasicREPL(ctx context.Context) {
	fmt.Println(util.FormatNotice(os.Stdout, "Running in basic mode (no history)"))
	basicLoop(ctx, os.Stdin, os.Stdout, evalEntry)
}

// basicLoop reads entries from in until EOF, an exit command or ctx is done.
// Reads happen on their own goroutine so cancellation never waits for input.
func basicLoop(ctx context.Context, in io.Reader, out io.Writer, eval func(context.Context, string)) {
	lines := make(chan string)
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
	}()

	var buf lineBuffer
	for {
		if buf.pending() {
			_, _ = fmt.Fprint(out, "..> ")
		} else {
			_, _ = fmt.Fprint(out, "js> ")
		}

		var line string
		select {
		case <-ctx.Done():
			return
		case l, ok := <-lines:
			if !ok {
				return
			}
			line = l
		}

		entry, done := buf.add(line)
		if !done {
			continue
		}
		if isExit(entry) {
			return
		}
		eval(ctx, entry)
	}
}

func startREPL(ctx context.Context, config util.Config) {
	fmt.Println(version.Banner("jsbridge"))
	fmt.Println(util.FormatNotice(os.Stdout, "Each entry runs in a fresh namespace. End a line with \\ to continue it; 'quit' to exit"))

	if !util.IsInteractive(os.Stdin) {
		startBasicREPL(ctx)
		return
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       historyPath(config),
		HistoryLimit:      1000,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Printf("Failed to create readline instance, falling back to basic input: %v\n", err)
		startBasicREPL(ctx)
		return
	}
	defer func() {
		_ = rl.Close() // Best-effort close, errors during shutdown not critical
	}()

	var buf lineBuffer
	for ctx.Err() == nil {
		if buf.pending() {
			rl.SetPrompt(contPrompt)
		} else {
			rl.SetPrompt(prompt)
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if !buf.pending() && len(line) == 0 {
					fmt.Println("Use 'quit' or 'exit' to exit")
				}
				buf.reset()
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Println("\nGoodbye!")
				break
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}

		entry, done := buf.add(line)
		if !done {
			continue
		}
		if isExit(entry) {
			break
		}
		evalEntry(ctx, entry)
	}
}
