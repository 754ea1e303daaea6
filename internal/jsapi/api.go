// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package jsapi provides the global functions bound into every script namespace.
//
// Functions are organized into files:
//   - api.go: API struct, registration, output and timing functions
//   - helpers.go: value formatting and argument helpers
package jsapi

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"

	"github.com/aplane-algo/jsbridge/internal/modules"
)

// Options configures the API bound into one namespace.
type Options struct {
	// Stdout and Stderr receive script output. They are looked up on every
	// write, so the owner may swap what they point at between writes.
	Stdout io.Writer
	Stderr io.Writer

	// Modules backs require(). Nil leaves only the core modules available.
	Modules *modules.Loader

	// Stop is closed when the session is asked to stop; blocking
	// functions return early when it fires.
	Stop <-chan struct{}

	// ResourceDir is exposed to scripts as __resourceDir.
	ResourceDir string
}

// API provides JavaScript bindings for one namespace.
type API struct {
	runtime   *goja.Runtime
	opts      Options
	stringify goja.Callable
}

// NewAPI creates a new JavaScript API instance.
func NewAPI(opts Options) *API {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	return &API{opts: opts}
}

// RegisterAll registers all API functions on the given Goja runtime.
func (a *API) RegisterAll(vm *goja.Runtime) error {
	a.runtime = vm

	if json := vm.Get("JSON"); json != nil {
		if fn, ok := goja.AssertFunction(json.ToObject(vm).Get("stringify")); ok {
			a.stringify = fn
		}
	}

	set := func(name string, fn func(goja.FunctionCall) goja.Value) error {
		return vm.Set(name, fn)
	}

	// require() goes first: console pulls in the util core module.
	loader := a.opts.Modules
	if loader == nil {
		loader = modules.NewLoader(&modules.SearchPath{})
	}
	if _, err := loader.Enable(vm); err != nil {
		return fmt.Errorf("failed to register require: %w", err)
	}

	// Output functions
	if err := set("print", a.jsPrint); err != nil {
		return fmt.Errorf("failed to register print: %w", err)
	}
	if err := a.registerConsole(vm); err != nil {
		return fmt.Errorf("failed to register console: %w", err)
	}

	// Utility functions
	if err := set("sleep", a.jsSleep); err != nil {
		return fmt.Errorf("failed to register sleep: %w", err)
	}
	if err := vm.Set("__resourceDir", a.opts.ResourceDir); err != nil {
		return fmt.Errorf("failed to register __resourceDir: %w", err)
	}

	return nil
}

// printer routes console output: log to stdout, warn and error to stderr.
type printer struct{ a *API }

func (p printer) Log(s string)   { p.a.writeString(p.a.opts.Stdout, s+"\n") }
func (p printer) Warn(s string)  { p.a.writeString(p.a.opts.Stderr, s+"\n") }
func (p printer) Error(s string) { p.a.writeString(p.a.opts.Stderr, s+"\n") }

func (a *API) registerConsole(vm *goja.Runtime) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("console module: %v", r)
		}
	}()

	module := vm.NewObject()
	exports := vm.NewObject()
	if err := module.Set("exports", exports); err != nil {
		return err
	}
	console.RequireWithPrinter(printer{a})(vm, module)

	obj := module.Get("exports").ToObject(vm)
	for _, alias := range []string{"info", "debug"} {
		if v := obj.Get(alias); v == nil || goja.IsUndefined(v) {
			if err := obj.Set(alias, obj.Get("log")); err != nil {
				return err
			}
		}
	}
	return vm.Set("console", obj)
}

// jsPrint writes its arguments, space separated, as one line to stdout.
func (a *API) jsPrint(call goja.FunctionCall) goja.Value {
	a.writeLine(a.opts.Stdout, call.Arguments)
	return goja.Undefined()
}

func (a *API) writeLine(w io.Writer, args []goja.Value) {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = a.Format(arg)
	}
	a.writeString(w, strings.Join(parts, " ")+"\n")
}

func (a *API) writeString(w io.Writer, s string) {
	if _, err := io.WriteString(w, s); err != nil {
		panic(a.runtime.NewGoError(err))
	}
}

// jsSleep blocks for the given number of milliseconds, returning early when
// the session is asked to stop.
func (a *API) jsSleep(call goja.FunctionCall) goja.Value {
	a.requireArgs(call, 1, "sleep() requires a duration in milliseconds")

	ms := call.Arguments[0].ToInteger()
	if ms <= 0 {
		return goja.Undefined()
	}

	// Durations past what time.Duration holds sleep for the longest one.
	ms = min(ms, math.MaxInt64/int64(time.Millisecond))

	timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-a.opts.Stop:
	}
	return goja.Undefined()
}
