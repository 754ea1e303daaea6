// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package bridge

import (
	"context"
	"sync"

	"github.com/aplane-algo/jsbridge/internal/util"
)

var (
	defaultOnce    sync.Once
	defaultRuntime *Runtime
)

// Default returns the process-wide runtime used by the package-level functions.
func Default() *Runtime {
	defaultOnce.Do(func() {
		defaultRuntime = New(util.DefaultConfig())
	})
	return defaultRuntime
}

// Configure sets the configuration of the process-wide runtime. It must be
// called before the runtime is initialized.
func Configure(cfg util.Config) error {
	return Default().Configure(cfg)
}

// Config returns the configuration in effect on the process-wide runtime.
func Config() util.Config {
	return Default().Config()
}

// Initialize brings up the process-wide runtime. See Runtime.Initialize.
func Initialize(resourceDir string) (Status, error) {
	return Default().Initialize(resourceDir)
}

// Run executes source text on the process-wide runtime.
func Run(source string) *Result {
	return Default().Run(source)
}

// RunFile executes a script file on the process-wide runtime.
func RunFile(path string) *Result {
	return Default().RunFile(path)
}

// Exec runs a request on the process-wide runtime.
func Exec(ctx context.Context, req Request) *Result {
	return Default().Exec(ctx, req)
}

// RequestStop interrupts the session running on the process-wide runtime.
func RequestStop() Status {
	return Default().RequestStop()
}

// SetOutputHandlers registers streaming handlers on the process-wide runtime.
func SetOutputHandlers(stdout, stderr ChunkFunc, user any) {
	Default().SetOutputHandlers(stdout, stderr, user)
}

// Shutdown tears down the process-wide runtime so it can be initialized again.
func Shutdown() error {
	return Default().Shutdown()
}
