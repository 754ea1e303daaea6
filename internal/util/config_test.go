// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if !reflect.DeepEqual(cfg.StdlibArchives, []string{"js-stdlib.zip", "stdlib.zip"}) {
		t.Errorf("StdlibArchives = %v", cfg.StdlibArchives)
	}
	if !cfg.VerifyChecksums {
		t.Error("VerifyChecksums should default to true")
	}
	if cfg.ResourceDir != "" {
		t.Errorf("ResourceDir = %q, want empty", cfg.ResourceDir)
	}
}

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
		check   func(t *testing.T, cfg Config)
	}{
		{
			name: "empty keeps defaults",
			yaml: "",
			check: func(t *testing.T, cfg Config) {
				if !reflect.DeepEqual(cfg, DefaultConfig()) {
					t.Errorf("config = %+v, want defaults", cfg)
				}
			},
		},
		{
			name: "all fields",
			yaml: `
resource_dir: /opt/res
stdlib_archives: [custom.zip]
module_paths: [lib, vendor]
prelude: [init.js]
verify_checksums: false
history_file: /tmp/hist
`,
			check: func(t *testing.T, cfg Config) {
				want := Config{
					ResourceDir:     "/opt/res",
					StdlibArchives:  []string{"custom.zip"},
					ModulePaths:     []string{"lib", "vendor"},
					Prelude:         []string{"init.js"},
					VerifyChecksums: false,
					HistoryFile:     "/tmp/hist",
				}
				if !reflect.DeepEqual(cfg, want) {
					t.Errorf("config = %+v, want %+v", cfg, want)
				}
			},
		},
		{
			name: "empty archive list falls back to defaults",
			yaml: "stdlib_archives: []",
			check: func(t *testing.T, cfg Config) {
				if len(cfg.StdlibArchives) != 2 {
					t.Errorf("StdlibArchives = %v", cfg.StdlibArchives)
				}
			},
		},
		{
			name:    "archive with directory",
			yaml:    "stdlib_archives: [sub/lib.zip]",
			wantErr: "invalid stdlib archive name",
		},
		{
			name:    "empty prelude entry",
			yaml:    `prelude: ["  "]`,
			wantErr: "prelude entries must not be empty",
		},
		{
			name:    "malformed yaml",
			yaml:    "module_paths: [unterminated",
			wantErr: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.yaml))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("ParseConfig() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseConfig() unexpected error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestOverlayConfigDoesNotAliasBase(t *testing.T) {
	base := DefaultConfig()
	base.ModulePaths = []string{"lib"}

	cfg, err := OverlayConfig(base, []byte("verify_checksums: false"))
	if err != nil {
		t.Fatalf("OverlayConfig() error: %v", err)
	}
	if cfg.VerifyChecksums || !reflect.DeepEqual(cfg.ModulePaths, []string{"lib"}) {
		t.Errorf("overlay = %+v", cfg)
	}

	cfg.ModulePaths[0] = "changed"
	if base.ModulePaths[0] != "lib" {
		t.Error("OverlayConfig() result shares slices with base")
	}
}

func TestLoadConfigFromPath(t *testing.T) {
	cfg, err := LoadConfigFromPath("")
	if err != nil || !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("LoadConfigFromPath(\"\") = %+v, %v", cfg, err)
	}

	dir := t.TempDir()
	cfg, err = LoadConfigFromPath(filepath.Join(dir, "missing.yaml"))
	if err != nil || !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("LoadConfigFromPath(missing) = %+v, %v", cfg, err)
	}

	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte("prelude: [a.js]"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadConfigFromPath(path)
	if err != nil || !reflect.DeepEqual(cfg.Prelude, []string{"a.js"}) {
		t.Errorf("LoadConfigFromPath() = %+v, %v", cfg, err)
	}
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		path, base, want string
	}{
		{"lib", "/res", filepath.Join("/res", "lib")},
		{"/abs/lib", "/res", "/abs/lib"},
		{"lib", "", "lib"},
		{"", "/res", ""},
	}
	for _, tt := range tests {
		if got := ResolvePath(tt.path, tt.base); got != tt.want {
			t.Errorf("ResolvePath(%q, %q) = %q, want %q", tt.path, tt.base, got, tt.want)
		}
	}
}
