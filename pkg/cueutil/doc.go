// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against an embedded schema and
// decodes them into Go values.
//
// The flow is always the same:
//
//  1. Compile the embedded schema and look up its root definition
//  2. Compile the user document and unify it with that definition
//  3. Validate and decode
//
// Errors carry the file name and a JSON-path style location:
//
//	var settings map[string]any
//	err := cueutil.Decode(schema, "#Config", data, &settings,
//	    cueutil.WithFilename("config.cue"),
//	    cueutil.WithConcrete(false),
//	)
//	// config.cue: mirror.strategy: 2 errors in empty disjunction: ...
package cueutil
