// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package modules implements the module search path and the CommonJS-style
// require() used by scripts. The search path and compiled programs are shared
// by every session; loaded module instances belong to one namespace.
package modules

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

var (
	// ErrNotDirectory indicates a module path entry that is not a directory
	ErrNotDirectory = errors.New("module path is not a directory")

	// ErrModuleNotFound indicates no search path entry provides the module
	ErrModuleNotFound = errors.New("module not found")

	// ErrInvalidModuleName indicates an empty or malformed module name
	ErrInvalidModuleName = errors.New("invalid module name")
)

// Entry is one element of the search path: a zip archive or a directory.
type Entry struct {
	Path string
	FS   fs.FS

	closer io.Closer
}

// OpenArchive opens a zip archive as a search path entry.
func OpenArchive(path string) (*Entry, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	rc, err := zip.OpenReader(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", abs, err)
	}
	return &Entry{Path: abs, FS: rc, closer: rc}, nil
}

// OpenDir uses a directory as a search path entry.
func OpenDir(path string) (*Entry, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}
	return &Entry{Path: abs, FS: os.DirFS(abs)}, nil
}

// Close releases the archive behind the entry, if any.
func (e *Entry) Close() error {
	if e == nil || e.closer == nil {
		return nil
	}
	return e.closer.Close()
}

// SearchPath is the ordered list of module locations. Lookups walk it front to back.
type SearchPath struct {
	mu      sync.RWMutex
	entries []*Entry
}

// Contains reports whether an entry with the given path is present.
func (sp *SearchPath) Contains(path string) bool {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	return sp.indexLocked(path) >= 0
}

// Prepend inserts e at the front. It returns false, leaving the search path
// unchanged, when an entry with the same path is already present.
func (sp *SearchPath) Prepend(e *Entry) bool {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if sp.indexLocked(e.Path) >= 0 {
		return false
	}
	sp.entries = append([]*Entry{e}, sp.entries...)
	return true
}

// Append adds e at the back unless its path is already present.
func (sp *SearchPath) Append(e *Entry) bool {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if sp.indexLocked(e.Path) >= 0 {
		return false
	}
	sp.entries = append(sp.entries, e)
	return true
}

// Paths returns the entry paths in lookup order.
func (sp *SearchPath) Paths() []string {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	paths := make([]string, len(sp.entries))
	for i, e := range sp.entries {
		paths[i] = e.Path
	}
	return paths
}

// Len returns the number of entries.
func (sp *SearchPath) Len() int {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	return len(sp.entries)
}

// Reset closes and removes every entry.
func (sp *SearchPath) Reset() error {
	sp.mu.Lock()
	entries := sp.entries
	sp.entries = nil
	sp.mu.Unlock()

	var errs []error
	for _, e := range entries {
		if err := e.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (sp *SearchPath) snapshot() []*Entry {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	return append([]*Entry(nil), sp.entries...)
}

func (sp *SearchPath) indexLocked(path string) int {
	for i, e := range sp.entries {
		if e.Path == path {
			return i
		}
	}
	return -1
}
