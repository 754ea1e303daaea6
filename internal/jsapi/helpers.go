// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package jsapi

import (
	"github.com/dop251/goja"
)

// requireArgs panics with a JS exception if the call has fewer than n arguments.
func (a *API) requireArgs(call goja.FunctionCall, n int, msg string) {
	if len(call.Arguments) < n {
		panic(a.runtime.NewTypeError(msg))
	}
}

// Format renders a value the way print() shows it: strings verbatim,
// errors and functions via toString, plain objects and arrays as JSON.
func (a *API) Format(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}

	obj, ok := v.(*goja.Object)
	if !ok {
		return v.String()
	}

	switch obj.ClassName() {
	case "Error", "Function", "Date", "RegExp":
		return v.String()
	}

	if a.stringify == nil {
		return v.String()
	}
	out, err := a.stringify(goja.Undefined(), v)
	if err != nil || out == nil || goja.IsUndefined(out) {
		// Cycles and BigInts make JSON.stringify throw
		return v.String()
	}
	return out.String()
}
