// SPDX-License-Identifier: MPL-2.0

// Package toolexec runs external command-line tools (git, rsync, robocopy)
// to completion and captures their output.
//
// A Runner reports the exit status of every invocation as data. Deciding
// whether a status is a failure is left to the caller through an AcceptFunc,
// because some tools (robocopy) signal success with non-zero codes.
package toolexec
