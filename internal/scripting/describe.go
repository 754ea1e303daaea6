// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package scripting

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dop251/goja"
)

// FallbackDescription is returned when a fault cannot be rendered.
const FallbackDescription = "<unprintable script error>\n"

// Describe renders a failed execution into a printable, newline-terminated
// diagnostic: error type and message followed by the script stack.
// It never panics.
func Describe(err error) (desc string) {
	defer func() {
		if r := recover(); r != nil {
			desc = FallbackDescription
		}
	}()

	if err == nil {
		return FallbackDescription
	}

	var se *ScriptError
	var ex *goja.Exception
	var ie *goja.InterruptedError
	var syn *goja.CompilerSyntaxError

	switch {
	case errors.As(err, &se):
		desc = se.Message
	case errors.As(err, &ie):
		desc = ie.String()
	case errors.As(err, &ex):
		desc = ex.String()
	case errors.As(err, &syn):
		desc = syn.Error()
	default:
		desc = "Error: " + err.Error()
	}

	desc = strings.TrimRight(desc, "\n")
	if desc == "" {
		return FallbackDescription
	}
	return desc + "\n"
}

// IsInterrupt reports whether err is a cooperative interruption.
func IsInterrupt(err error) bool {
	var se *ScriptError
	if errors.As(err, &se) {
		return se.Interrupted
	}
	var ie *goja.InterruptedError
	return errors.As(err, &ie)
}

// panicError converts a Go panic escaping the VM into a script failure.
func panicError(r interface{}) *ScriptError {
	msg := fmt.Sprintf("InternalError: %v", r)
	return &ScriptError{Message: msg + "\n", Cause: errors.New(msg)}
}
