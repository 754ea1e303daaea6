// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })
	Version = "1.2.3"

	s := String()
	for _, want := range []string{"1.2.3", GitCommit, runtime.GOOS + "/" + runtime.GOARCH} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
	if got := Banner("jsbridge"); got != "jsbridge 1.2.3 (goja runtime)" {
		t.Errorf("Banner() = %q", got)
	}
}
