// SPDX-License-Identifier: MPL-2.0

// Package cmd implements the mcpsetup command line.
//
// Every command is built by a newXCommand constructor that receives the App
// composition root. Handlers load configuration, build a session holding the
// resolved layout, installer, and mirror, and delegate to internal/provision.
// Failures are printed once, with suggestions, and returned as *ExitError so
// Execute can map them to a process exit code.
package cmd
