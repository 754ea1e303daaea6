// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package bridge

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/docker/go-units"
	"github.com/google/uuid"

	"github.com/aplane-algo/jsbridge/internal/scripting"
	"github.com/aplane-algo/jsbridge/internal/util"
)

// Request describes one execution: source text, or a file when Path is set.
// Empty source text is a valid session that runs nothing.
type Request struct {
	Source string
	Path   string

	// Name labels the script in stack traces. Defaults to Path or "<script>".
	Name string

	// Discarded streams come back as nil buffers.
	DiscardStdout bool
	DiscardStderr bool

	// Echo prints a non-empty completion value to stdout, REPL style.
	Echo bool
}

func (req Request) validate() error {
	if req.Source != "" && req.Path != "" {
		return ErrInvalidRequest
	}
	return nil
}

func (req Request) name() string {
	switch {
	case req.Name != "":
		return req.Name
	case req.Path != "":
		return req.Path
	default:
		return "<script>"
	}
}

// Run executes source text as top-level statements in a fresh namespace.
func (rt *Runtime) Run(source string) *Result {
	return rt.Exec(context.Background(), Request{Source: source})
}

// RunFile executes the file at path in a fresh namespace.
func (rt *Runtime) RunFile(path string) *Result {
	return rt.Exec(context.Background(), Request{Path: path})
}

// Exec runs one session. It initializes the runtime on first use, waits for
// the execution lock, captures output and always returns a Result.
// Cancelling ctx interrupts this session the same way RequestStop does.
func (rt *Runtime) Exec(ctx context.Context, req Request) *Result {
	res := &Result{SessionID: uuid.NewString(), ExitCode: 1}

	if err := req.validate(); err != nil {
		res.Status = StatusInvalidRequest
		return res
	}

	if !rt.initialized.Load() {
		status, err := rt.Initialize("")
		if err != nil {
			res.Status = status
			if !req.DiscardStderr {
				res.Stderr = newBuffer([]byte(err.Error() + "\n"))
			}
			return res
		}
	}

	rt.exec.Lock()
	defer rt.exec.Unlock()

	rt.execLocked(ctx, req, res)
	return res
}

// execLocked is steps 3-7 of a session. Caller holds the execution lock.
func (rt *Runtime) execLocked(ctx context.Context, req Request, res *Result) {
	start := time.Now()

	s := &session{id: res.SessionID}
	rt.active.Store(s)
	defer rt.active.Store(nil)
	if rt.onSession != nil {
		rt.onSession()
	}

	capture, err := rt.installCapture()
	if err != nil {
		util.Logger.Error("session setup failed", "session", res.SessionID, "error", err)
		res.Status = StatusCaptureFailed
		return
	}
	defer capture.restore()

	runner, err := scripting.NewGojaRunner(scripting.Options{
		Stdout:      targetWriter{rt: rt, stream: streamStdout},
		Stderr:      targetWriter{rt: rt, stream: streamStderr},
		Modules:     rt.loader,
		ResourceDir: rt.resourceDir,
	})
	if err != nil {
		util.Logger.Error("session setup failed", "session", res.SessionID, "error", err)
		res.Status = StatusBindFailed
		return
	}

	s.attach(runner)

	stopOnCancel := context.AfterFunc(ctx, func() {
		runner.Interrupt(fmt.Sprintf("Interrupted: %v", context.Cause(ctx)))
	})
	defer stopOnCancel()

	if err := rt.execute(runner, req); err != nil {
		runner.ClearInterrupt()
		_, _ = io.WriteString(capture.stderr, scripting.Describe(err))
		res.Status = StatusScriptFailed
		res.ExitCode = 1
	} else {
		res.Status = StatusOK
		res.ExitCode = 0
	}

	if !req.DiscardStdout {
		res.Stdout = newBuffer(capture.stdout.buf.Bytes())
	}
	if !req.DiscardStderr {
		res.Stderr = newBuffer(capture.stderr.buf.Bytes())
	}

	util.Debug("session finished",
		"session", res.SessionID,
		"exit_code", res.ExitCode,
		"status", res.Status,
		"stdout", units.HumanSize(float64(capture.stdout.buf.Len())),
		"stderr", units.HumanSize(float64(capture.stderr.buf.Len())),
		"duration", time.Since(start),
	)
}

// execute runs the preludes and then the request in runner's namespace.
func (rt *Runtime) execute(runner *scripting.GojaRunner, req Request) error {
	for _, prg := range rt.prelude {
		if _, err := runner.RunProgram(prg); err != nil {
			return err
		}
	}

	code := req.Source
	if req.Path != "" {
		data, err := os.ReadFile(req.Path)
		if err != nil {
			return fmt.Errorf("cannot read script: %w", err)
		}
		code = string(data)
	}

	result, err := runner.Run(req.name(), code)
	if err != nil {
		return err
	}
	if req.Echo && !result.IsEmpty {
		_, _ = io.WriteString(targetWriter{rt: rt, stream: streamStdout}, result.Text+"\n")
	}
	return nil
}
