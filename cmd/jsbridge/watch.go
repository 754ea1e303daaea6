// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/aplane-algo/jsbridge/internal/bridge"
	"github.com/aplane-algo/jsbridge/internal/util"
)

const debounceDelay = 200 * time.Millisecond

// watchScript runs script, then runs it again after every change until ctx
// is cancelled. The parent directory is watched so editors that replace the
// file on save are still seen.
func watchScript(ctx context.Context, script string) error {
	path, err := filepath.Abs(script)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	rerun := make(chan struct{}, 1)
	trigger := func() {
		select {
		case rerun <- struct{}{}:
		default:
		}
	}
	trigger()

	// Debounce timer to avoid rapid re-runs
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-rerun:
			code := runSession(ctx, bridge.Request{Path: path})
			notice := fmt.Sprintf("[%s] exit %d, watching %s", time.Now().Format(time.TimeOnly), code, script)
			fmt.Fprintln(os.Stderr, util.FormatNotice(os.Stderr, notice))

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !affects(event, path) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, trigger)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			util.Logger.Warn("file watcher error", "error", err)
		}
	}
}

// affects reports whether event changes the watched file.
func affects(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != path {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0
}
