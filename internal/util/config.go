// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ResourceDirEnv carries the resource directory from Initialize to the
// runtime bring-up step.
const ResourceDirEnv = "JSBRIDGE_RESOURCE_DIR"

// ConfigFileName is the optional config file looked up in the resource directory.
const ConfigFileName = "jsbridge.yaml"

// Config holds bridge configuration settings
type Config struct {
	ResourceDir    string   `yaml:"resource_dir" description:"Directory holding bundled script resources (overridden by JSBRIDGE_RESOURCE_DIR)"`
	StdlibArchives []string `yaml:"stdlib_archives" description:"Archive names looked up in the resource directory, first match goes to the front of the search path" default:"[js-stdlib.zip, stdlib.zip]"`
	ModulePaths    []string `yaml:"module_paths" description:"Extra module directories appended to the search path (relative to the resource directory)" default:"[]"`
	Prelude        []string `yaml:"prelude" description:"Scripts run at the start of every session (relative to the resource directory)" default:"[]"`

	VerifyChecksums bool `yaml:"verify_checksums" description:"Check archives against checksums.sha256 in the resource directory when present" default:"true"`

	// CLI only
	HistoryFile string `yaml:"history_file" description:"REPL history file (empty = ~/.jsbridge_history)"`
}

// DefaultConfig returns the default configuration for runtime use.
func DefaultConfig() Config {
	return Config{
		StdlibArchives:  []string{"js-stdlib.zip", "stdlib.zip"},
		ModulePaths:     []string{},
		Prelude:         []string{},
		VerifyChecksums: true,
	}
}

// LoadConfigFromPath loads configuration from the specified path.
// If path is empty or the file doesn't exist, returns default config.
func LoadConfigFromPath(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig overlays YAML data on the defaults and validates the result.
func ParseConfig(data []byte) (Config, error) {
	return OverlayConfig(DefaultConfig(), data)
}

// OverlayConfig overlays YAML data on base and validates the result.
// Keys missing from data keep their base values.
func OverlayConfig(base Config, data []byte) (Config, error) {
	config := base
	config.StdlibArchives = slices.Clone(base.StdlibArchives)
	config.ModulePaths = slices.Clone(base.ModulePaths)
	config.Prelude = slices.Clone(base.Prelude)
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	if len(config.StdlibArchives) == 0 {
		config.StdlibArchives = DefaultConfig().StdlibArchives
	}
	for _, name := range config.StdlibArchives {
		if name == "" || strings.ContainsAny(name, `/\`) {
			return Config{}, fmt.Errorf("invalid stdlib archive name %q (must be a plain file name)", name)
		}
	}
	for _, p := range config.Prelude {
		if strings.TrimSpace(p) == "" {
			return Config{}, fmt.Errorf("prelude entries must not be empty")
		}
	}

	return config, nil
}

// ResolvePath makes path absolute relative to baseDir. Absolute paths and an
// empty baseDir leave path unchanged.
func ResolvePath(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
