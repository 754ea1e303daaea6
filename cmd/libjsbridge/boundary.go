// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"context"
	"strings"

	"github.com/aplane-algo/jsbridge/internal/bridge"
)

// outcome is a session result in the shape the C functions hand back.
// A nil stream was discarded by the caller or never produced.
type outcome struct {
	stdout   *string
	stderr   *string
	exitCode int
	status   bridge.Status
}

// rejected is the outcome of a call with a missing or empty argument.
func rejected() outcome {
	return outcome{exitCode: 1, status: bridge.StatusInvalidRequest}
}

// runSource runs code; nil code is rejected.
func runSource(code *string, wantStdout, wantStderr bool) outcome {
	if code == nil {
		return rejected()
	}
	return execute(bridge.Request{Source: *code}, wantStdout, wantStderr)
}

// runPath runs the script at path; nil or empty paths are rejected.
func runPath(path *string, wantStdout, wantStderr bool) outcome {
	if path == nil || *path == "" {
		return rejected()
	}
	return execute(bridge.Request{Path: *path}, wantStdout, wantStderr)
}

func execute(req bridge.Request, wantStdout, wantStderr bool) outcome {
	req.DiscardStdout = !wantStdout
	req.DiscardStderr = !wantStderr

	res := bridge.Exec(context.Background(), req)
	defer res.Release()

	o := outcome{exitCode: res.ExitCode, status: res.Status}
	if wantStdout && res.Stdout != nil {
		s := res.Stdout.String()
		o.stdout = &s
	}
	if wantStderr && res.Stderr != nil {
		s := res.Stderr.String()
		o.stderr = &s
	}
	return o
}

// cText makes s safe for a NUL-terminated C string: NUL bytes become U+FFFD
// instead of silently cutting the text short.
func cText(s string) string {
	return strings.ReplaceAll(s, "\x00", "\uFFFD")
}

// fillError copies msg into dst, truncated to leave room for the NUL
// terminator. An empty dst is left untouched.
func fillError(dst []byte, msg string) {
	if len(dst) == 0 {
		return
	}
	k := copy(dst[:len(dst)-1], msg)
	dst[k] = 0
}
