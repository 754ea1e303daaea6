// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package bridge

import "github.com/aplane-algo/jsbridge/internal/util"

// RequestStop asks the running session to stop at its next safe point and
// returns without waiting. With no session running it does nothing; there is
// no pending stop carried over to later sessions. The stopped session ends
// as an ordinary script failure described with InterruptReason.
//
// Returns StatusNotInitialized before the runtime is initialized.
func (rt *Runtime) RequestStop() Status {
	if !rt.initialized.Load() {
		return StatusNotInitialized
	}

	s := rt.active.Load()
	if s == nil {
		return StatusOK
	}

	util.Debug("stop requested", "session", s.id)
	s.requestStop()
	return StatusOK
}
