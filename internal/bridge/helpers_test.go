// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package bridge

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/aplane-algo/jsbridge/internal/util"
)

// newTestRuntime returns an uninitialized runtime with JSBRIDGE_RESOURCE_DIR
// cleared for the duration of the test.
func newTestRuntime(t *testing.T, cfg util.Config) *Runtime {
	t.Helper()
	t.Setenv(util.ResourceDirEnv, "")
	rt := New(cfg)
	t.Cleanup(func() { _ = rt.Shutdown() })
	return rt
}

// writeZip creates an archive holding files (name -> source).
func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create archive: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, src := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("Failed to add %s: %v", name, err)
		}
		if _, err := w.Write([]byte(src)); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to finish archive: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Failed to close archive: %v", err)
	}
}

// writeFile writes content under dir and returns the full path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// stdlibDir creates a resource directory with a js-stdlib.zip providing "greet".
func stdlibDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeZip(t, filepath.Join(dir, "js-stdlib.zip"), map[string]string{
		"greet.js": `exports.hello = function (name) { return "hello " + name; };`,
	})
	return dir
}

func mustRun(t *testing.T, rt *Runtime, source string) *Result {
	t.Helper()
	res := rt.Run(source)
	t.Cleanup(res.Release)
	if res.ExitCode != 0 {
		t.Fatalf("Run(%q) exit code = %d, status = %v, stderr = %q",
			source, res.ExitCode, res.Status, res.Stderr.String())
	}
	return res
}
