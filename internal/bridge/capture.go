// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package bridge

import (
	"bytes"
	"io"
	"sync"
)

// ChunkFunc receives one write to a script output stream as UTF-8 text,
// together with the user value given at registration.
type ChunkFunc func(chunk string, user any)

type outputHandlers struct {
	stdout ChunkFunc
	stderr ChunkFunc
	user   any
}

// SetOutputHandlers registers process-wide streaming handlers, replacing any
// previous ones. Chunks are delivered in addition to buffered capture, from
// the goroutine running the session and while it holds the execution lock,
// so a handler must not start a session itself. Passing two nil handlers
// clears the registration. Takes effect with the next write.
func (rt *Runtime) SetOutputHandlers(stdout, stderr ChunkFunc, user any) {
	if stdout == nil && stderr == nil {
		rt.handlers.Store(nil)
		return
	}
	rt.handlers.Store(&outputHandlers{stdout: stdout, stderr: stderr, user: user})
}

type stream int

const (
	streamStdout stream = iota
	streamStderr
)

// targetWriter is what namespaces write to. It resolves the runtime's
// current target on every write, so redirection needs no rebinding.
type targetWriter struct {
	rt     *Runtime
	stream stream
}

func (w targetWriter) Write(p []byte) (int, error) {
	if w.stream == streamStderr {
		return w.rt.stderr.Write(p)
	}
	return w.rt.stdout.Write(p)
}

// sink is an in-memory capture target that also feeds the streaming handler.
type sink struct {
	rt     *Runtime
	stream stream
	buf    bytes.Buffer
}

func (s *sink) Write(p []byte) (int, error) {
	n, err := s.buf.Write(p)
	if h := s.rt.handlers.Load(); h != nil {
		fn := h.stdout
		if s.stream == streamStderr {
			fn = h.stderr
		}
		if fn != nil && n > 0 {
			fn(string(p[:n]), h.user)
		}
	}
	return n, err
}

// capture is one installed pair of sinks and the targets they replaced.
type capture struct {
	rt      *Runtime
	prevOut io.Writer
	prevErr io.Writer
	stdout  *sink
	stderr  *sink
	once    sync.Once
}

// installCapture swaps both output targets for fresh sinks. The returned
// capture must be restored; restore is idempotent.
// Caller holds the execution lock.
func (rt *Runtime) installCapture() (*capture, error) {
	if rt.capturing {
		return nil, ErrCaptureActive
	}

	c := &capture{
		rt:      rt,
		prevOut: rt.stdout,
		prevErr: rt.stderr,
		stdout:  &sink{rt: rt, stream: streamStdout},
		stderr:  &sink{rt: rt, stream: streamStderr},
	}
	rt.stdout = c.stdout
	rt.stderr = c.stderr
	rt.capturing = true
	return c, nil
}

// restore puts the previous targets back exactly once.
func (c *capture) restore() {
	c.once.Do(func() {
		c.rt.stdout = c.prevOut
		c.rt.stderr = c.prevErr
		c.rt.capturing = false
	})
}
