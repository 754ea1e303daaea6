// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// jsbridge runs scripts on the embedded runtime from the command line.
//
//	jsbridge [flags] [file | -]
//
// With no file and no -e it starts an interactive REPL.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/aplane-algo/jsbridge/internal/bridge"
	"github.com/aplane-algo/jsbridge/internal/util"
	"github.com/aplane-algo/jsbridge/internal/version"
)

func main() {
	// Define all flags upfront before parsing
	printVersion := flag.Bool("version", false, "Print version and exit")
	configPath := flag.String("c", "", "Config file (YAML, same keys as jsbridge.yaml)")
	resourceDir := flag.String("r", "", "Resource directory (default: "+util.ResourceDirEnv+" or config resource_dir)")
	expr := flag.String("e", "", "Execute JavaScript source and print its value")
	watch := flag.Bool("watch", false, "Re-run the script file whenever it changes")
	flag.Parse()

	if *printVersion {
		fmt.Printf("jsbridge %s\n", version.String())
		os.Exit(0)
	}

	// Initialize logger (supports JSBRIDGE_DEBUG environment variable)
	util.InitLogger(os.Stderr)

	config, err := util.LoadConfigFromPath(*configPath)
	if err != nil {
		fatalf("Invalid configuration: %v", err)
	}
	if err := bridge.Configure(config); err != nil {
		fatalf("%v", err)
	}

	if _, err := bridge.Initialize(*resourceDir); err != nil {
		fatalf("%v", err)
	}

	bridge.SetOutputHandlers(streamStdout, streamStderr, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handleInterrupts(cancel)

	code := 0
	script := flag.Arg(0)
	switch {
	case *expr != "":
		code = runSession(ctx, bridge.Request{Source: *expr, Name: "<expr>", Echo: true})
	case *watch:
		if script == "" || script == "-" {
			fatalf("-watch needs a script file")
		}
		if err := watchScript(ctx, script); err != nil {
			fatalf("%v", err)
		}
	case script == "-":
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			fatalf("failed to read script: %v", err)
		}
		code = runSession(ctx, bridge.Request{Source: string(src), Name: "<stdin>"})
	case script != "":
		code = runSession(ctx, bridge.Request{Path: script})
	default:
		startREPL(ctx, bridge.Config())
	}

	cancel()
	_ = bridge.Shutdown()
	os.Exit(code)
}

// handleInterrupts turns SIGINT/SIGTERM into a stop request for the running
// session, or cancels ctx when nothing is running.
func handleInterrupts(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for range sigChan {
			if bridge.Default().Busy() {
				util.Debug("interrupt received, stopping session")
				bridge.RequestStop()
				continue
			}
			cancel()
		}
	}()
}

func fatalf(format string, args ...any) {
	fmt.Fprint(os.Stderr, util.FormatError(os.Stderr, fmt.Sprintf("Error: "+format, args...)))
	fmt.Fprintln(os.Stderr)
	os.Exit(1)
}
