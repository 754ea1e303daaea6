// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package bridge

import "sync"

// Buffer is captured text owned by the caller. It is released exactly once;
// further releases, and releases of a nil Buffer, do nothing.
type Buffer struct {
	mu       sync.Mutex
	data     []byte
	released bool
}

func newBuffer(p []byte) *Buffer {
	data := make([]byte, len(p))
	copy(data, p)
	return &Buffer{data: data}
}

// Bytes returns the buffer contents, or nil once released. The slice is
// only valid until Release.
func (b *Buffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data
}

// String returns the buffer contents as text ("" once released).
func (b *Buffer) String() string {
	return string(b.Bytes())
}

// Len returns the length in bytes.
func (b *Buffer) Len() int {
	return len(b.Bytes())
}

// Release frees the contents. It reports whether this call did the release.
func (b *Buffer) Release() bool {
	if b == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.released {
		return false
	}
	b.released = true
	b.data = nil
	return true
}

// Released reports whether Release has been called.
func (b *Buffer) Released() bool {
	if b == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released
}

// Free releases b. Equivalent to b.Release(); safe on nil.
func Free(b *Buffer) {
	b.Release()
}

// Result is the outcome of one execution session.
type Result struct {
	SessionID string

	// Stdout and Stderr are nil when the stream was discarded or the
	// session never got as far as capturing.
	Stdout *Buffer
	Stderr *Buffer

	ExitCode int
	Status   Status
}

// Release frees both output buffers.
func (r *Result) Release() {
	if r == nil {
		return
	}
	r.Stdout.Release()
	r.Stderr.Release()
}
