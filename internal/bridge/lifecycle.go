// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package bridge

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dop251/goja"

	"github.com/aplane-algo/jsbridge/internal/integrity"
	"github.com/aplane-algo/jsbridge/internal/modules"
	"github.com/aplane-algo/jsbridge/internal/util"
)

// Configure replaces the configuration used by the next Initialize.
// It fails once the runtime is initialized.
func (rt *Runtime) Configure(cfg util.Config) error {
	rt.initMu.Lock()
	defer rt.initMu.Unlock()
	if rt.initialized.Load() {
		return ErrAlreadyInitialized
	}
	rt.base = cfg
	rt.config = cfg
	return nil
}

// Config returns the configuration in effect: the configured one with the
// resource directory's jsbridge.yaml overlaid once the runtime is initialized.
func (rt *Runtime) Config() util.Config {
	rt.initMu.Lock()
	defer rt.initMu.Unlock()
	return rt.config
}

// Initialize brings the runtime up once per process. Later calls return
// StatusOK without doing anything. A non-empty resourceDir is published
// through JSBRIDGE_RESOURCE_DIR before bring-up reads it; an empty one
// keeps whatever the environment (or the configuration) already says.
//
// On failure the runtime stays uninitialized and the call may be retried.
func (rt *Runtime) Initialize(resourceDir string) (Status, error) {
	if rt.initialized.Load() {
		return StatusOK, nil
	}

	rt.initMu.Lock()
	defer rt.initMu.Unlock()
	if rt.initialized.Load() {
		return StatusOK, nil
	}

	if resourceDir != "" {
		if err := os.Setenv(util.ResourceDirEnv, resourceDir); err != nil {
			return StatusInitFailed, fmt.Errorf("%w: %w", ErrInitFailed, err)
		}
	}

	st, err := rt.bringUp()
	if err != nil {
		util.Logger.Warn("runtime bring-up failed", "error", err)
		return StatusInitFailed, fmt.Errorf("%w: %w", ErrInitFailed, err)
	}

	rt.exec.Lock()
	err = rt.prime(st)
	if err == nil {
		rt.config = st.config
		rt.resourceDir = st.dir
		rt.prelude = st.prelude
		rt.initialized.Store(true)
	}
	rt.exec.Unlock()

	if err != nil {
		util.Logger.Warn("search path priming failed", "resource_dir", st.dir, "error", err)
		return StatusPathFailed, fmt.Errorf("%w: %w", ErrPathFailed, err)
	}

	util.Debug("runtime initialized", "resource_dir", st.dir, "search_path", rt.searchPath.Paths())
	return StatusOK, nil
}

// bringUpState is what bring-up produced; it is committed only if priming succeeds.
type bringUpState struct {
	dir     string
	config  util.Config
	prelude []*goja.Program
}

func (rt *Runtime) bringUp() (*bringUpState, error) {
	st := &bringUpState{config: rt.base}

	st.dir = os.Getenv(util.ResourceDirEnv)
	if st.dir == "" {
		st.dir = st.config.ResourceDir
	}

	if st.dir != "" {
		data, err := os.ReadFile(filepath.Join(st.dir, util.ConfigFileName))
		switch {
		case err == nil:
			cfg, err := util.OverlayConfig(st.config, data)
			if err != nil {
				return nil, err
			}
			st.config = cfg
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("failed to read %s: %w", util.ConfigFileName, err)
		}
	}
	st.config.ResourceDir = st.dir

	for _, p := range st.config.Prelude {
		path := util.ResolvePath(p, st.dir)
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read prelude: %w", err)
		}
		prg, err := goja.Compile(path, string(src), false)
		if err != nil {
			return nil, fmt.Errorf("failed to compile prelude %s: %w", path, err)
		}
		st.prelude = append(st.prelude, prg)
	}

	return st, nil
}

// prime puts the first bundled library archive found in the resource
// directory at the front of the search path and appends configured module
// directories. Nothing is added unless every step succeeds.
// Caller holds the execution lock.
func (rt *Runtime) prime(st *bringUpState) (err error) {
	var archive *modules.Entry
	var dirs []*modules.Entry
	defer func() {
		if err != nil {
			_ = archive.Close()
			for _, d := range dirs {
				_ = d.Close()
			}
		}
	}()

	if st.dir != "" {
		archive, err = rt.findArchive(st)
		if err != nil {
			return err
		}
	}

	for _, p := range st.config.ModulePaths {
		path, err := filepath.Abs(util.ResolvePath(p, st.dir))
		if err != nil {
			return err
		}
		if rt.searchPath.Contains(path) {
			continue
		}
		entry, err := modules.OpenDir(path)
		if err != nil {
			return fmt.Errorf("module path %s: %w", p, err)
		}
		dirs = append(dirs, entry)
	}

	if archive != nil {
		rt.searchPath.Prepend(archive)
	}
	for _, d := range dirs {
		rt.searchPath.Append(d)
	}
	return nil
}

// findArchive opens the first configured archive that exists, unless it is
// already on the search path. Returns nil when there is nothing to add.
func (rt *Runtime) findArchive(st *bringUpState) (*modules.Entry, error) {
	for _, name := range st.config.StdlibArchives {
		path, err := filepath.Abs(filepath.Join(st.dir, name))
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		if rt.searchPath.Contains(path) {
			return nil, nil
		}

		if st.config.VerifyChecksums {
			verifier, err := integrity.NewVerifier(st.dir)
			if err != nil {
				return nil, err
			}
			if _, err := verifier.Verify(name); err != nil {
				return nil, err
			}
		}
		return modules.OpenArchive(path)
	}
	return nil, nil
}

// Shutdown tears the runtime down so a later Initialize starts over: it waits
// for the running session, closes archives, drops compiled programs and marks
// the runtime uninitialized. Output handlers stay registered.
func (rt *Runtime) Shutdown() error {
	rt.initMu.Lock()
	defer rt.initMu.Unlock()
	rt.exec.Lock()
	defer rt.exec.Unlock()

	rt.initialized.Store(false)
	rt.config = rt.base
	rt.resourceDir = ""
	rt.prelude = nil
	rt.loader.Reset()
	return rt.searchPath.Reset()
}
