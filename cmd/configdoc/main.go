// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// configdoc generates markdown documentation from Go struct tags.
// Usage: go run ./cmd/configdoc > doc/CONFIG_REFERENCE.md
package main

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/aplane-algo/jsbridge/internal/util"
)

// EnvVar represents an environment variable configuration
type EnvVar struct {
	Name        string
	Description string
	UsedBy      string
}

func main() {
	fmt.Println("# Configuration Reference")
	fmt.Println()
	fmt.Println("Auto-generated from Go struct tags. Do not edit manually.")
	fmt.Println()
	fmt.Println("---")
	fmt.Println()

	fmt.Println("## jsbridge Configuration")
	fmt.Println()
	fmt.Println("File: `jsbridge.yaml` in the resource directory (overlaid at bring-up), or `-c <path>` for the CLI")
	fmt.Println()
	printStructTable(reflect.TypeOf(util.Config{}))
	fmt.Println()

	// Environment variables
	fmt.Println("## Environment Variables")
	fmt.Println()
	printEnvVars()
}

func printStructTable(t reflect.Type) {
	printStructTableWithPrefix(t, "")
}

func printStructTableWithPrefix(t reflect.Type, prefix string) {
	if prefix == "" {
		fmt.Println("| Field | Type | Default | Description |")
		fmt.Println("|-------|------|---------|-------------|")
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// Get yaml tag first, fall back to json tag
		tag := field.Tag.Get("yaml")
		if tag == "" {
			tag = field.Tag.Get("json")
		}
		if tag == "" || tag == "-" {
			continue
		}
		// Handle tag options like "omitempty"
		fieldName := strings.Split(tag, ",")[0]
		if prefix != "" {
			fieldName = prefix + "." + fieldName
		}

		// Check if this is a nested struct (pointer to struct)
		if field.Type.Kind() == reflect.Ptr && field.Type.Elem().Kind() == reflect.Struct {
			// Get description for the nested struct itself
			desc := field.Tag.Get("description")
			if desc == "" {
				desc = "(nested config block)"
			}
			fmt.Printf("| `%s` | object | (none) | %s |\n", fieldName, desc)
			// Recursively print nested struct fields
			printStructTableWithPrefix(field.Type.Elem(), fieldName)
			continue
		}

		// Get description
		desc := field.Tag.Get("description")
		if desc == "" {
			desc = "(no description)"
		}

		// Get default
		def := field.Tag.Get("default")
		switch def {
		case "":
			def = "(none)"
		case `""`:
			def = "(empty string)"
		}

		// Get type name
		typeName := formatType(field.Type)

		fmt.Printf("| `%s` | %s | `%s` | %s |\n", fieldName, typeName, def, desc)
	}
}

func formatType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "int"
	case reflect.Bool:
		return "bool"
	case reflect.Slice:
		return "[]" + formatType(t.Elem())
	case reflect.Ptr:
		return "*" + formatType(t.Elem())
	default:
		return t.String()
	}
}

func printEnvVars() {
	envVars := []EnvVar{
		{util.ResourceDirEnv, "Resource directory read at bring-up (set by Initialize when given a directory)", "libjsbridge, jsbridge"},
		{"JSBRIDGE_DEBUG", "Set to any value to enable debug logging", "jsbridge"},
		{"NO_COLOR", "Set to any value to disable colored diagnostics", "jsbridge"},
	}

	fmt.Println("| Variable | Description | Used By |")
	fmt.Println("|----------|-------------|---------|")

	for _, env := range envVars {
		fmt.Printf("| `%s` | %s | %s |\n", env.Name, env.Description, env.UsedBy)
	}

	fmt.Println()
	fmt.Println("### Resource Directory Precedence")
	fmt.Println()
	fmt.Println("1. Argument to `jsbridge_initialize` / `-r` (published through `" + util.ResourceDirEnv + "`)")
	fmt.Println("2. `" + util.ResourceDirEnv + "` already present in the environment")
	fmt.Println("3. `resource_dir` from the configuration")
}

func init() {
	// Ensure we exit cleanly
	if len(os.Args) > 1 && os.Args[1] == "--help" {
		fmt.Println("Usage: go run ./cmd/configdoc > doc/CONFIG_REFERENCE.md")
		fmt.Println()
		fmt.Println("Generates markdown documentation from Go struct tags.")
		os.Exit(0)
	}
}
