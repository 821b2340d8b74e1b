// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"testing"

	"github.com/moorestech/mcpsetup/internal/issue"
	"github.com/moorestech/mcpsetup/internal/provision"
	"github.com/moorestech/mcpsetup/internal/toolexec"
)

func TestIssueFor(t *testing.T) {
	t.Parallel()

	gitMissing := &provision.InstallError{
		Step: provision.StepInit,
		Err:  fmt.Errorf("run git: %w", &exec.Error{Name: "git", Err: exec.ErrNotFound}),
	}
	rsyncFailed := &provision.MirrorError{
		Step: string(provision.StrategyRsync),
		Err:  &toolexec.ExternalToolError{Tool: "rsync", ExitCode: 23},
	}

	tests := []struct {
		name string
		err  error
		want issue.Id
	}{
		{"config", fmt.Errorf("%w: bad", errConfigUnavailable), issue.ConfigLoadFailedId},
		{"platform", provision.ErrUnsupportedPlatform, issue.UnsupportedPlatformId},
		{"git missing wins over install failure", gitMissing, issue.GitNotFoundId},
		{"network", fmt.Errorf("fetch: %w", provision.ErrNetwork), issue.NetworkUnavailableId},
		{"manifest", provision.ErrMalformedManifest, issue.MalformedManifestId},
		{"install", &provision.InstallError{Step: provision.StepFetch, Err: errors.New("x")}, issue.InstallFailedId},
		{"update", &provision.UpdateError{Step: provision.StepPull, Err: errors.New("x")}, issue.UpdateFailedId},
		{"local source", provision.ErrLocalSourceNotFound, issue.LocalSourceNotFoundId},
		{"mirror", rsyncFailed, issue.MirrorFailedId},
		{"permission", fmt.Errorf("mkdir: %w", fs.ErrPermission), issue.PermissionDeniedId},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := issueFor(tt.err)
			if got == nil {
				t.Fatalf("issueFor(%v) = nil, want %d", tt.err, tt.want)
			}
			if got.Id() != tt.want {
				t.Errorf("issueFor(%v) = %d, want %d", tt.err, got.Id(), tt.want)
			}
		})
	}

	if got := issueFor(errors.New("unclassified")); got != nil {
		t.Errorf("issueFor(unclassified) = %d, want nil", got.Id())
	}
}

func TestActionableAddsSuggestions(t *testing.T) {
	t.Parallel()

	err := actionable("sync local server", "/tmp/src", provision.ErrLocalSourceNotFound)

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("actionable returned %T, want *issue.ActionableError", err)
	}
	if !errors.Is(err, provision.ErrLocalSourceNotFound) {
		t.Error("cause is not preserved")
	}
	if !ae.HasSuggestions() {
		t.Error("expected catalog suggestions")
	}
	if got := formatErrorForDisplay(err, false); !strings.HasPrefix(got, "failed to sync local server: /tmp/src") {
		t.Errorf("formatErrorForDisplay = %q", got)
	}
}

func TestActionableKeepsExisting(t *testing.T) {
	t.Parallel()

	inner := issue.NewErrorContext().WithOperation("load configuration").WithSuggestion("fix it").BuildError()
	err := actionable("ensure server installation", "/root", fmt.Errorf("%w: %w", errConfigUnavailable, inner))

	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Operation != "load configuration" {
		t.Fatalf("actionable rewrapped an actionable error: %v", err)
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	if got := (&ExitError{Code: 3}).Error(); got != "exit status 3" {
		t.Errorf("Error() = %q", got)
	}
	cause := errors.New("cause")
	e := &ExitError{Code: 1, Err: cause}
	if e.Error() != "cause" || !errors.Is(e, cause) {
		t.Errorf("ExitError does not expose its cause: %v", e)
	}
}

func TestExitCodeOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitOK},
		{"reported failure", &ExitError{Code: ExitFailure}, ExitFailure},
		{"wrapped exit error", fmt.Errorf("run: %w", &ExitError{Code: 7}), 7},
		{"parser error", errors.New(`unknown flag: --nope`), ExitUsage},
	}
	for _, tt := range tests {
		if got := exitCodeOf(tt.err); got != tt.want {
			t.Errorf("%s: exitCodeOf() = %d, want %d", tt.name, got, tt.want)
		}
	}
}
