// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aplane-algo/jsbridge/internal/bridge"
	"github.com/aplane-algo/jsbridge/internal/util"
)

// streamStdout and streamStderr print script output as it is written, so
// sessions discard their buffers.
func streamStdout(chunk string, _ any) {
	_, _ = os.Stdout.WriteString(chunk)
}

func streamStderr(chunk string, _ any) {
	_, _ = os.Stderr.WriteString(util.FormatError(os.Stderr, chunk))
}

// runSession executes req and returns the process exit code for it.
func runSession(ctx context.Context, req bridge.Request) int {
	req.DiscardStdout = true
	req.DiscardStderr = true

	res := bridge.Exec(ctx, req)
	defer res.Release()

	if res.Status.IsSetup() {
		fmt.Fprintln(os.Stderr, util.FormatError(os.Stderr, "Error: session failed: "+res.Status.String()))
	}
	return res.ExitCode
}
