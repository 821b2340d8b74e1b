// SPDX-License-Identifier: MPL-2.0

package cmd

import "fmt"

// Process exit codes.
const (
	ExitOK = 0
	// ExitFailure reports a provisioning or configuration failure.
	ExitFailure = 1
	// ExitUsage reports a command line the parser rejected.
	ExitUsage = 2
)

// ExitError carries a process exit code out of a RunE handler. A nil Err
// means the failure was already printed.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// exitCodeOf maps an error returned by the command tree to an exit code.
// Errors that are not ExitErrors come from cobra's argument and flag
// parsing.
func exitCodeOf(err error) int {
	if err == nil {
		return ExitOK
	}
	if exitErr, ok := asExitError(err); ok {
		return exitErr.Code
	}
	return ExitUsage
}
