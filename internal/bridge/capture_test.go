// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package bridge

import (
	"strings"
	"sync"
	"testing"

	"github.com/aplane-algo/jsbridge/internal/util"
)

type chunkRecorder struct {
	mu     sync.Mutex
	stdout []string
	stderr []string
	users  []any
}

func (r *chunkRecorder) out(chunk string, user any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stdout = append(r.stdout, chunk)
	r.users = append(r.users, user)
}

func (r *chunkRecorder) err(chunk string, user any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stderr = append(r.stderr, chunk)
	r.users = append(r.users, user)
}

func TestOutputHandlers(t *testing.T) {
	rt := newTestRuntime(t, util.DefaultConfig())
	rec := &chunkRecorder{}
	rt.SetOutputHandlers(rec.out, rec.err, "token")

	res := mustRun(t, rt, `print("a"); print("b"); console.error("e")`)

	if got := strings.Join(rec.stdout, "|"); got != "a\n|b\n" {
		t.Errorf("stdout chunks = %q", got)
	}
	if got := strings.Join(rec.stderr, "|"); got != "e\n" {
		t.Errorf("stderr chunks = %q", got)
	}
	for _, u := range rec.users {
		if u != "token" {
			t.Errorf("handler user value = %v, want token", u)
		}
	}
	// Buffered capture still sees everything.
	if res.Stdout.String() != "a\nb\n" || res.Stderr.String() != "e\n" {
		t.Errorf("buffers = %q / %q", res.Stdout.String(), res.Stderr.String())
	}
}

func TestOutputHandlersReceiveDiagnostic(t *testing.T) {
	rt := newTestRuntime(t, util.DefaultConfig())
	rec := &chunkRecorder{}
	rt.SetOutputHandlers(nil, rec.err, nil)

	res := rt.Run(`print("quiet"); throw new RangeError("too far")`)
	defer res.Release()

	if len(rec.stdout) != 0 {
		t.Errorf("stdout chunks = %q, want none without a stdout handler", rec.stdout)
	}
	if len(rec.stderr) != 1 || !strings.Contains(rec.stderr[0], "RangeError: too far") {
		t.Errorf("stderr chunks = %q", rec.stderr)
	}
}

func TestClearOutputHandlers(t *testing.T) {
	rt := newTestRuntime(t, util.DefaultConfig())
	rec := &chunkRecorder{}
	rt.SetOutputHandlers(rec.out, rec.err, nil)
	rt.SetOutputHandlers(nil, nil, nil)

	res := mustRun(t, rt, `print("x"); console.warn("y")`)
	if len(rec.stdout)+len(rec.stderr) != 0 {
		t.Errorf("cleared handlers still called: %q %q", rec.stdout, rec.stderr)
	}
	if res.Stdout.String() != "x\n" || res.Stderr.String() != "y\n" {
		t.Errorf("buffers = %q / %q", res.Stdout.String(), res.Stderr.String())
	}
}
