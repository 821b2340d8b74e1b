// SPDX-License-Identifier: MPL-2.0

// Package provision installs, updates, and mirrors the Unity MCP server on
// the local machine.
//
// The server lives in a sparse git checkout under a per-OS root directory.
// Its version is read from the pyproject.toml manifest in the checkout and
// compared against the manifest published on the upstream branch.
//
// The main entry point is the Installer:
//
//	layout, err := provision.NewLayout(provision.HostEnvironment(), provision.LayoutOptions{})
//	inst := provision.NewInstaller(layout, provision.WithLogger(logger))
//	outcome := inst.Ensure(ctx)
//	// outcome.Action reports what happened; outcome.Err is non-nil on failure
//
// Mirror provides the developer flow that copies a local working copy of the
// server over the installed one instead of going through git.
package provision
