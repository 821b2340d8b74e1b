// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing errors for mcpsetup.
//
// ActionableError pairs a failed operation with the resource involved and
// suggestions for fixing it. The Issue catalog holds longer Markdown guidance
// for well-known failures (git missing, network down, corrupt installation),
// rendered for the terminal with glamour.
package issue
