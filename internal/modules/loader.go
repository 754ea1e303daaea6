// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package modules

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"sync/atomic"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/require"
)

// Loader serves module sources from a search path to a goja_nodejs require
// registry. The registry, and with it every compiled program, is shared by
// all sessions; each namespace enabled on it gets its own module instances.
type Loader struct {
	path *SearchPath

	mu       sync.Mutex
	registry *require.Registry
	loaded   atomic.Int64
}

// NewLoader creates a loader over sp.
func NewLoader(sp *SearchPath) *Loader {
	l := &Loader{path: sp}
	l.registry = l.newRegistry()
	return l
}

func (l *Loader) newRegistry() *require.Registry {
	// Bare names resolve against the root of every search path entry.
	return require.NewRegistry(
		require.WithLoader(l.source),
		require.WithGlobalFolders("."),
	)
}

// SearchPath returns the search path the loader resolves against.
func (l *Loader) SearchPath() *SearchPath {
	return l.path
}

// Reset drops every compiled program. Namespaces enabled afterwards use a
// fresh registry.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.registry = l.newRegistry()
	l.loaded.Store(0)
}

// Loaded returns how many module sources were read from the search path.
// The registry compiles each source once, so this stays flat when further
// namespaces require modules already loaded.
func (l *Loader) Loaded() int {
	return int(l.loaded.Load())
}

// source is the registry's SourceLoader: the first entry holding p wins.
func (l *Loader) source(p string) ([]byte, error) {
	if !fs.ValidPath(p) {
		return nil, require.ModuleFileDoesNotExistError
	}
	for _, e := range l.path.snapshot() {
		info, err := fs.Stat(e.FS, p)
		if err != nil || info.IsDir() {
			continue
		}
		data, err := fs.ReadFile(e.FS, p)
		if err != nil {
			return nil, fmt.Errorf("failed to read module %s from %s: %w", p, e.Path, err)
		}
		l.loaded.Add(1)
		return data, nil
	}
	return nil, require.ModuleFileDoesNotExistError
}

// Namespace is require() bound to one runtime.
type Namespace struct {
	vm     *goja.Runtime
	module *require.RequireModule
}

// Enable installs require() in vm.
func (l *Loader) Enable(vm *goja.Runtime) (*Namespace, error) {
	l.mu.Lock()
	registry := l.registry
	l.mu.Unlock()

	ns := &Namespace{vm: vm, module: registry.Enable(vm)}
	if err := vm.Set("require", ns.require); err != nil {
		return nil, err
	}
	return ns, nil
}

// Require loads name as if the script had called require(name).
func (ns *Namespace) Require(name string) (goja.Value, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidModuleName, name)
	}
	v, err := ns.module.Require(name)
	if err != nil {
		return nil, translate(name, err)
	}
	return v, nil
}

func (ns *Namespace) require(call goja.FunctionCall) goja.Value {
	name := call.Argument(0)
	if goja.IsUndefined(name) || goja.IsNull(name) {
		panic(ns.vm.NewTypeError("require() expects a module name"))
	}

	v, err := ns.Require(name.String())
	if err == nil {
		return v
	}

	var ie *goja.InterruptedError
	var ex *goja.Exception
	switch {
	case errors.As(err, &ie):
		// Re-arm so the interrupt surfaces at the caller's next step.
		ns.vm.Interrupt(ie.Value())
		return goja.Undefined()
	case errors.As(err, &ex):
		panic(ex)
	default:
		panic(ns.vm.NewGoError(err))
	}
}

// translate maps registry errors onto this package's sentinels.
func translate(name string, err error) error {
	switch {
	case errors.Is(err, require.InvalidModuleError):
		return fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	case errors.Is(err, require.IllegalModuleNameError):
		return fmt.Errorf("%w: %q", ErrInvalidModuleName, name)
	}
	var ie *goja.InterruptedError
	var ex *goja.Exception
	if errors.As(err, &ie) || errors.As(err, &ex) {
		return err
	}
	return fmt.Errorf("failed to load module %s: %w", name, err)
}
