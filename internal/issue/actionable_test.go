// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "install server"},
			expected: "failed to install server",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "install server", Resource: "/home/dev/bin/mooresUnityMCP"},
			expected: "failed to install server: /home/dev/bin/mooresUnityMCP",
		},
		{
			name:     "full context",
			err:      &ActionableError{Operation: "load configuration", Resource: "config.cue", Cause: errors.New("syntax error")},
			expected: "failed to load configuration: config.cue: syntax error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_ErrorsIs(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("network error")
	err := NewErrorContext().
		WithOperation("check latest version").
		Wrap(fmt.Errorf("fetch manifest: %w", sentinel)).
		BuildError()

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should see through ActionableError")
	}
	var ae *ActionableError
	if !errors.As(err, &ae) || ae.Operation != "check latest version" {
		t.Errorf("errors.As = %+v", ae)
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	inner := errors.New("exit code 128")
	err := &ActionableError{
		Operation:   "update server",
		Suggestions: []string{"Run 'mcpsetup force-update'", "Check network access"},
		Cause:       fmt.Errorf("git pull: %w", inner),
	}

	quiet := err.Format(false)
	if !strings.Contains(quiet, "  • Run 'mcpsetup force-update'") || !strings.Contains(quiet, "  • Check network access") {
		t.Errorf("Format(false) = %q", quiet)
	}
	if strings.Contains(quiet, "Error chain") {
		t.Error("Format(false) should not include the error chain")
	}

	verbose := err.Format(true)
	if !strings.Contains(verbose, "Error chain:") ||
		!strings.Contains(verbose, "1. git pull: exit code 128") ||
		!strings.Contains(verbose, "2. exit code 128") {
		t.Errorf("Format(true) = %q", verbose)
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should return nil")
	}
	if err := NewErrorContext().BuildError(); err != nil {
		t.Errorf("BuildError() without operation = %v, want untyped nil", err)
	}

	ae := NewErrorContext().
		WithOperation("sync local server").
		WithResource("/repo/UnityMcpServer").
		WithSuggestion("one").
		WithSuggestions("two", "three").
		Build()
	if ae == nil {
		t.Fatal("Build() returned nil")
	}
	if !ae.HasSuggestions() || len(ae.Suggestions) != 3 {
		t.Errorf("Suggestions = %v", ae.Suggestions)
	}
	if ae.Resource != "/repo/UnityMcpServer" {
		t.Errorf("Resource = %q", ae.Resource)
	}
}
