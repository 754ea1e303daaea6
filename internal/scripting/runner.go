// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package scripting provides interfaces and implementations for script execution.
// It abstracts the underlying VM behind a common interface.
package scripting

// ScriptError represents an error that occurred during script execution.
// Message is the printable diagnostic produced by Describe.
type ScriptError struct {
	Message     string
	Interrupted bool
	Cause       error
}

func (e *ScriptError) Error() string {
	return e.Message
}

func (e *ScriptError) Unwrap() error {
	return e.Cause
}

// Result holds the outcome of running a script.
type Result struct {
	// Value is the exported completion value (nil if IsEmpty is true)
	Value interface{}
	// Text is Value rendered the way print() would show it
	Text string
	// IsEmpty is true if the script completed with undefined/null
	IsEmpty bool
}

// Runner is the low-level VM abstraction for executing scripts.
// One Runner is one namespace: names defined by a Run stay visible to later
// Runs on the same Runner and never leak into another Runner.
//
// It does NOT handle:
//   - Locking (callers serialize access)
//   - Output redirection (the writers are fixed at construction)
//   - Timeouts (see Interrupt)
type Runner interface {
	// Run executes code as top-level statements. name labels stack traces.
	// Script faults are returned as *ScriptError.
	Run(name, code string) (Result, error)

	// Interrupt stops the currently running script at its next step.
	// Safe to call from another goroutine.
	Interrupt(reason string)
}
