// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package scripting

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/dop251/goja"

	"github.com/aplane-algo/jsbridge/internal/jsapi"
	"github.com/aplane-algo/jsbridge/internal/modules"
)

// ErrBind indicates the script API could not be bound into a new namespace.
var ErrBind = errors.New("failed to bind script API")

// Options configures a new namespace.
type Options struct {
	Stdout      io.Writer
	Stderr      io.Writer
	Modules     *modules.Loader
	ResourceDir string
}

// GojaRunner implements Runner using the Goja JavaScript interpreter.
// Each GojaRunner owns a fresh global namespace.
type GojaRunner struct {
	vm  *goja.Runtime
	api *jsapi.API

	stop     chan struct{}
	stopOnce sync.Once
}

// NewGojaRunner creates a new Goja-based script runner with the script API
// bound to the given writers.
func NewGojaRunner(opts Options) (*GojaRunner, error) {
	r := &GojaRunner{
		stop: make(chan struct{}),
	}

	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))

	api := jsapi.NewAPI(jsapi.Options{
		Stdout:      opts.Stdout,
		Stderr:      opts.Stderr,
		Modules:     opts.Modules,
		Stop:        r.stop,
		ResourceDir: opts.ResourceDir,
	})
	if err := api.RegisterAll(vm); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBind, err)
	}

	r.vm = vm
	r.api = api
	return r, nil
}

// Run executes JavaScript code and returns its completion value.
func (r *GojaRunner) Run(name, code string) (Result, error) {
	return r.run(func() (goja.Value, error) {
		return r.vm.RunScript(name, code)
	})
}

// RunProgram executes a precompiled program in this namespace.
func (r *GojaRunner) RunProgram(p *goja.Program) (Result, error) {
	return r.run(func() (goja.Value, error) {
		return r.vm.RunProgram(p)
	})
}

func (r *GojaRunner) run(fn func() (goja.Value, error)) (res Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			res, err = Result{}, panicError(p)
		}
	}()

	value, runErr := fn()
	if runErr != nil {
		return Result{}, &ScriptError{
			Message:     Describe(runErr),
			Interrupted: IsInterrupt(runErr),
			Cause:       runErr,
		}
	}

	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return Result{IsEmpty: true}, nil
	}
	return Result{Value: value.Export(), Text: r.api.Format(value)}, nil
}

// Interrupt stops the currently running script and wakes blocking builtins.
// Safe to call from another goroutine; later calls only re-arm the VM flag.
func (r *GojaRunner) Interrupt(reason string) {
	r.stopOnce.Do(func() { close(r.stop) })
	r.vm.Interrupt(reason)
}

// ClearInterrupt drops an interrupt that was requested but not yet observed.
func (r *GojaRunner) ClearInterrupt() {
	r.vm.ClearInterrupt()
}

// Runtime returns the underlying Goja runtime.
// Use sparingly - prefer the Runner interface for portability.
func (r *GojaRunner) Runtime() *goja.Runtime {
	return r.vm
}

// Compile-time interface check
var _ Runner = (*GojaRunner)(nil)
