// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package bridge hosts the embedded script runtime: one-time bring-up,
// serialized execution sessions with captured output, cooperative
// cancellation and caller-owned result buffers.
//
// A process normally uses the package-level functions, which share one
// Runtime. Separate Runtime values exist for tests; they still share the
// process environment.
package bridge

import (
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dop251/goja"

	"github.com/aplane-algo/jsbridge/internal/modules"
	"github.com/aplane-algo/jsbridge/internal/scripting"
	"github.com/aplane-algo/jsbridge/internal/util"
)

// Runtime is the shared runtime state. All script execution goes through
// its execution lock; sessions never overlap.
type Runtime struct {
	// exec is the execution lock. It guards the output targets, the
	// search path contents during priming and everything a session touches.
	exec sync.Mutex

	// initMu serializes Initialize, Configure and Shutdown.
	initMu      sync.Mutex
	initialized atomic.Bool

	base        util.Config // as configured; bring-up overlays jsbridge.yaml on it
	config      util.Config // in effect after bring-up
	resourceDir string
	prelude     []*goja.Program

	searchPath modules.SearchPath
	loader     *modules.Loader

	// Output targets, swapped by the capture adapter.
	stdout    io.Writer
	stderr    io.Writer
	capturing bool

	handlers atomic.Pointer[outputHandlers]
	active   atomic.Pointer[session]

	// onSession, when set, runs once a session is published and before
	// its namespace exists.
	onSession func()
}

// session is the currently running execution, visible to RequestStop.
// It is published as soon as the execution lock is taken; runner stays nil
// until the namespace is built.
type session struct {
	id     string
	stop   atomic.Bool
	runner atomic.Pointer[scripting.GojaRunner]
}

// attach makes runner the session's namespace, honouring a stop that
// arrived while it was being built.
func (s *session) attach(runner *scripting.GojaRunner) {
	s.runner.Store(runner)
	if s.stop.Load() {
		runner.Interrupt(InterruptReason)
	}
}

// requestStop marks the session stopped and interrupts its namespace if
// one exists yet.
func (s *session) requestStop() {
	s.stop.Store(true)
	if runner := s.runner.Load(); runner != nil {
		runner.Interrupt(InterruptReason)
	}
}

// New creates an uninitialized runtime writing to the process stdout/stderr.
func New(cfg util.Config) *Runtime {
	rt := &Runtime{
		base:   cfg,
		config: cfg,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	rt.loader = modules.NewLoader(&rt.searchPath)
	return rt
}

// Initialized reports whether bring-up and priming have succeeded.
func (rt *Runtime) Initialized() bool {
	return rt.initialized.Load()
}

// Busy reports whether a session currently holds the execution lock.
func (rt *Runtime) Busy() bool {
	return rt.active.Load() != nil
}

// ResourceDir returns the resource directory in effect ("" when none).
func (rt *Runtime) ResourceDir() string {
	rt.exec.Lock()
	defer rt.exec.Unlock()
	return rt.resourceDir
}

// SearchPath returns the module search path, front first.
func (rt *Runtime) SearchPath() []string {
	return rt.searchPath.Paths()
}

// Targets returns the current output targets. Outside a session these are
// the writers the runtime was created with.
func (rt *Runtime) Targets() (stdout, stderr io.Writer) {
	rt.exec.Lock()
	defer rt.exec.Unlock()
	return rt.stdout, rt.stderr
}

// SetTargets replaces the output targets used outside capture. It waits for
// a running session to finish.
func (rt *Runtime) SetTargets(stdout, stderr io.Writer) {
	rt.exec.Lock()
	defer rt.exec.Unlock()
	if stdout != nil {
		rt.stdout = stdout
	}
	if stderr != nil {
		rt.stderr = stderr
	}
}
