// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"

	"github.com/moorestech/mcpsetup/internal/issue"
	"github.com/moorestech/mcpsetup/internal/provision"
)

// issueStyle is the glamour style used for issue guidance. "auto" falls
// back to plain text when stdout is not a terminal.
const issueStyle = "auto"

// issueMatchers maps error classes to catalog entries. The first match wins,
// so specific classes come before the generic install and update failures.
var issueMatchers = []struct {
	target error
	id     issue.Id
}{
	{errConfigUnavailable, issue.ConfigLoadFailedId},
	{provision.ErrUnsupportedPlatform, issue.UnsupportedPlatformId},
	{provision.ErrLocalSourceNotFound, issue.LocalSourceNotFoundId},
	{provision.ErrMirrorFailed, issue.MirrorFailedId},
	{exec.ErrNotFound, issue.GitNotFoundId},
	{provision.ErrNetwork, issue.NetworkUnavailableId},
	{provision.ErrMalformedManifest, issue.MalformedManifestId},
	{fs.ErrPermission, issue.PermissionDeniedId},
	{provision.ErrInstallFailed, issue.InstallFailedId},
	{provision.ErrUpdateFailed, issue.UpdateFailedId},
}

var suggestions = map[issue.Id][]string{
	issue.UnsupportedPlatformId: {"Pass --root to install into an explicit directory"},
	issue.GitNotFoundId:         {"Install git and make sure it is on PATH", "Or set tools.git in the configuration"},
	issue.NetworkUnavailableId:  {"Check your network connection and proxy settings", "Increase remote.timeout or remote.retries"},
	issue.MalformedManifestId:   {"Run 'mcpsetup force-update' to restore the installed server"},
	issue.InstallFailedId:       {"Re-run with --verbose to see the failing git command", "Remove the installation root and try again"},
	issue.UpdateFailedId:        {"Run 'mcpsetup force-update' to discard local changes"},
	issue.LocalSourceNotFoundId: {"Pass --data-dir or --source", "Or set project.data_dir in the configuration"},
	issue.MirrorFailedId:        {"Retry with --strategy native"},
	issue.PermissionDeniedId:    {"Pass --root to install into a writable directory"},
	issue.ConfigLoadFailedId:    {"Run 'mcpsetup config dump' to see a valid configuration"},
}

// issueFor returns the catalog entry matching err, or nil.
func issueFor(err error) *issue.Issue {
	for _, m := range issueMatchers {
		if errors.Is(err, m.target) {
			return issue.Get(m.id)
		}
	}
	return nil
}

// actionable wraps err with the operation, the resource, and catalog
// suggestions. Errors that are already actionable are returned as is.
func actionable(op, resource string, err error) error {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return err
	}
	ctx := issue.NewErrorContext().WithOperation(op).WithResource(resource).Wrap(err)
	if is := issueFor(err); is != nil {
		ctx.WithSuggestions(suggestions[is.Id()]...)
	}
	return ctx.BuildError()
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// fail reports err on stderr and returns the ExitError a RunE handler
// should return. Verbose mode appends the rendered issue guidance.
func (a *App) fail(flags *rootFlags, op, resource string, err error) error {
	err = actionable(op, resource, err)
	fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, flags.verbose))

	if flags.verbose {
		if is := issueFor(err); is != nil {
			if guidance, rerr := is.Render(issueStyle); rerr == nil {
				fmt.Fprint(a.stderr, guidance)
			}
		}
	}
	return &ExitError{Code: ExitFailure}
}

func asExitError(err error) (*ExitError, bool) {
	var exitErr *ExitError
	ok := errors.As(err, &exitErr)
	return exitErr, ok
}
