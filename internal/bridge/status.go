// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package bridge

import (
	"errors"
	"strconv"
)

// Status is the integer outcome reported across the native boundary.
// Zero is success; negative values separate lifecycle, setup and script failures.
type Status int

const (
	StatusOK             Status = 0
	StatusInitFailed     Status = -1
	StatusPathFailed     Status = -2
	StatusScriptFailed   Status = -3
	StatusNotInitialized Status = -4

	// Session setup failures: nothing ran and nothing was captured.
	StatusInvalidRequest Status = -10
	StatusCaptureFailed  Status = -11
	StatusBindFailed     Status = -12
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInitFailed:
		return "init_failed"
	case StatusPathFailed:
		return "path_failed"
	case StatusScriptFailed:
		return "script_failed"
	case StatusNotInitialized:
		return "not_initialized"
	case StatusInvalidRequest:
		return "invalid_request"
	case StatusCaptureFailed:
		return "capture_failed"
	case StatusBindFailed:
		return "bind_failed"
	default:
		return "status(" + strconv.Itoa(int(s)) + ")"
	}
}

// IsLifecycle reports whether s is an initialization failure the caller may retry.
func (s Status) IsLifecycle() bool {
	return s == StatusInitFailed || s == StatusPathFailed
}

// IsSetup reports whether s is a session setup failure.
func (s Status) IsSetup() bool {
	return s <= StatusInvalidRequest
}

// InterruptReason is the diagnostic of a session stopped by RequestStop.
const InterruptReason = "Interrupted: script execution stopped by request"

var (
	// ErrInitFailed indicates the runtime could not be brought up
	ErrInitFailed = errors.New("runtime initialization failed")

	// ErrPathFailed indicates the module search path could not be primed
	ErrPathFailed = errors.New("failed to configure standard library path")

	// ErrAlreadyInitialized indicates configuration was attempted on a live runtime
	ErrAlreadyInitialized = errors.New("runtime already initialized")

	// ErrCaptureActive indicates output capture was installed twice
	ErrCaptureActive = errors.New("output capture already installed")

	// ErrInvalidRequest indicates a request carrying both source text and a source path
	ErrInvalidRequest = errors.New("request has both source text and a source path")
)
