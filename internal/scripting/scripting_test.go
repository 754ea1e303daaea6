// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package scripting

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestRunner(t *testing.T) (*GojaRunner, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	r, err := NewGojaRunner(Options{Stdout: &stdout, Stderr: &stderr})
	if err != nil {
		t.Fatalf("NewGojaRunner() error: %v", err)
	}
	return r, &stdout, &stderr
}

func TestRunResult(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		wantEmpty bool
		wantText  string
	}{
		{"statement", `var x = 1;`, true, ""},
		{"number", `1 + 2`, false, "3"},
		{"string", `"a" + "b"`, false, "ab"},
		{"object", `({k: "v"})`, false, `{"k":"v"}`},
		{"null", `null`, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTestRunner(t)
			res, err := r.Run("test.js", tt.code)
			if err != nil {
				t.Fatalf("Run() error: %v", err)
			}
			if res.IsEmpty != tt.wantEmpty {
				t.Errorf("IsEmpty = %v, want %v", res.IsEmpty, tt.wantEmpty)
			}
			if res.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", res.Text, tt.wantText)
			}
		})
	}
}

func TestRunScriptError(t *testing.T) {
	r, stdout, _ := newTestRunner(t)

	_, err := r.Run("fail.js", `print("before"); throw new TypeError("x");`)
	var se *ScriptError
	if !errors.As(err, &se) {
		t.Fatalf("Run() error = %v, want *ScriptError", err)
	}
	if !strings.Contains(se.Message, "TypeError") || !strings.Contains(se.Message, "x") {
		t.Errorf("Message = %q", se.Message)
	}
	if !strings.Contains(se.Message, "fail.js") {
		t.Errorf("Message lacks script name in stack: %q", se.Message)
	}
	if !strings.HasSuffix(se.Message, "\n") {
		t.Errorf("Message not newline terminated: %q", se.Message)
	}
	if se.Interrupted {
		t.Error("Interrupted = true for a thrown error")
	}
	if stdout.String() != "before\n" {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestRunSyntaxError(t *testing.T) {
	r, _, _ := newTestRunner(t)
	_, err := r.Run("bad.js", `var = ;`)
	if err == nil || !strings.Contains(err.Error(), "SyntaxError") {
		t.Errorf("Run() error = %v, want SyntaxError", err)
	}
}

func TestNamespacesAreIndependent(t *testing.T) {
	a, _, _ := newTestRunner(t)
	b, _, _ := newTestRunner(t)

	if _, err := a.Run("a.js", `var shared = 42; leaked = 1;`); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	res, err := b.Run("b.js", `typeof shared + "," + typeof leaked`)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Text != "undefined,undefined" {
		t.Errorf("Text = %q, want undefined,undefined", res.Text)
	}
}

func TestInterrupt(t *testing.T) {
	r, _, _ := newTestRunner(t)

	done := make(chan error, 1)
	go func() {
		_, err := r.Run("loop.js", `while (true) {}`)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	r.Interrupt("Interrupted: stop")

	select {
	case err := <-done:
		if !IsInterrupt(err) {
			t.Fatalf("Run() error = %v, want interrupt", err)
		}
		if !strings.Contains(Describe(err), "Interrupted: stop") {
			t.Errorf("Describe() = %q", Describe(err))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("script was not interrupted")
	}
}

func TestInterruptWakesSleep(t *testing.T) {
	r, _, _ := newTestRunner(t)

	done := make(chan error, 1)
	go func() {
		_, err := r.Run("sleep.js", `sleep(60000); print("unreachable")`)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	r.Interrupt("Interrupted: stop")
	r.Interrupt("Interrupted: again") // second call must not panic

	select {
	case err := <-done:
		if !IsInterrupt(err) {
			t.Fatalf("Run() error = %v, want interrupt", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("sleep was not interrupted")
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, FallbackDescription},
		{"plain error", errors.New("disk on fire"), "Error: disk on fire\n"},
		{"script error", &ScriptError{Message: "TypeError: x\n"}, "TypeError: x\n"},
		{"empty script error", &ScriptError{}, FallbackDescription},
		{"panic", panicError("kaboom"), "InternalError: kaboom\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.err); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}
