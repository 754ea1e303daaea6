// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// libjsbridge exports the script runtime as a C shared library.
//
// Build with:
//
//	go build -buildmode=c-shared -o libjsbridge.so ./cmd/libjsbridge
//
// Strings returned through out-parameters are allocated with malloc and must
// be released with jsbridge_free. A NULL out-parameter means the caller does
// not want that stream. Output is NUL-terminated UTF-8, so NUL bytes written
// by a script reach C as U+FFFD.
package main

/*
#include <stdlib.h>

typedef void (*jsbridge_output_cb)(const char* utf8_chunk, void* user);

static inline void jsbridge_call_output(jsbridge_output_cb cb, const char* chunk, void* user) {
	if (cb) {
		cb(chunk, user);
	}
}
*/
import "C"

import (
	"unsafe"

	"github.com/aplane-algo/jsbridge/internal/bridge"
)

//export jsbridge_initialize
func jsbridge_initialize(resourceDir *C.char, errbuf *C.char, errbufLen C.size_t) C.int {
	dir := ""
	if resourceDir != nil {
		dir = C.GoString(resourceDir)
	}
	status, err := bridge.Initialize(dir)
	if err != nil {
		setError(errbuf, errbufLen, err.Error())
	}
	return C.int(status)
}

//export jsbridge_run
func jsbridge_run(code *C.char, outStdout, outStderr **C.char, exitCode *C.int) C.int {
	o := runSource(goString(code), outStdout != nil, outStderr != nil)
	return deliver(o, outStdout, outStderr, exitCode)
}

//export jsbridge_run_file
func jsbridge_run_file(path *C.char, outStdout, outStderr **C.char, exitCode *C.int) C.int {
	o := runPath(goString(path), outStdout != nil, outStderr != nil)
	return deliver(o, outStdout, outStderr, exitCode)
}

//export jsbridge_free
func jsbridge_free(p unsafe.Pointer) {
	if p != nil {
		C.free(p)
	}
}

//export jsbridge_set_output_handlers
func jsbridge_set_output_handlers(stdoutCb, stderrCb C.jsbridge_output_cb, user unsafe.Pointer) {
	bridge.SetOutputHandlers(chunkFunc(stdoutCb), chunkFunc(stderrCb), user)
}

//export jsbridge_request_stop
func jsbridge_request_stop() C.int {
	return C.int(bridge.RequestStop())
}

// goString converts a C string; NULL gives nil.
func goString(s *C.char) *string {
	if s == nil {
		return nil
	}
	v := C.GoString(s)
	return &v
}

// deliver writes o through the out-parameters and returns its status.
func deliver(o outcome, outStdout, outStderr **C.char, exitCode *C.int) C.int {
	if outStdout != nil {
		*outStdout = cString(o.stdout)
	}
	if outStderr != nil {
		*outStderr = cString(o.stderr)
	}
	if exitCode != nil {
		*exitCode = C.int(o.exitCode)
	}
	return C.int(o.status)
}

func cString(s *string) *C.char {
	if s == nil {
		return nil
	}
	return C.CString(cText(*s))
}

// chunkFunc adapts a C callback; a NULL callback gives a nil ChunkFunc.
func chunkFunc(cb C.jsbridge_output_cb) bridge.ChunkFunc {
	if cb == nil {
		return nil
	}
	return func(chunk string, user any) {
		cs := C.CString(cText(chunk))
		defer C.free(unsafe.Pointer(cs))
		p, _ := user.(unsafe.Pointer)
		C.jsbridge_call_output(cb, cs, p)
	}
}

// setError copies msg into the caller's buffer, truncated and NUL-terminated.
func setError(buf *C.char, n C.size_t, msg string) {
	if buf == nil {
		return
	}
	fillError(unsafe.Slice((*byte)(unsafe.Pointer(buf)), int(n)), msg)
}

func main() {}
