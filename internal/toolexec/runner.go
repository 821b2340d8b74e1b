// SPDX-License-Identifier: MPL-2.0

package toolexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strings"

	"github.com/moorestech/mcpsetup/pkg/platform"
)

// ErrExternalToolFailed is the sentinel wrapped by ExternalToolError.
var ErrExternalToolFailed = errors.New("external tool failed")

type (
	// Invocation describes one external process run.
	Invocation struct {
		// Name is the program to run, resolved through PATH.
		Name string
		// Args are passed verbatim; no shell is involved.
		Args []string
		// Dir is the working directory. Empty means the current directory.
		Dir string
		// Env is appended to the inherited environment.
		Env []string
	}

	// Result carries the exit status and captured streams of a finished process.
	Result struct {
		ExitCode int
		Stdout   string
		Stderr   string
	}

	// Runner executes invocations to completion. A non-zero exit status is
	// reported in Result, not as an error; the error return is reserved for
	// failures to start or wait on the process (binary not found, etc.).
	Runner interface {
		Run(ctx context.Context, inv Invocation) (Result, error)
	}

	// AcceptFunc reports whether an exit code counts as success.
	AcceptFunc func(code int) bool

	// ExternalToolError is returned when a tool exits with a code its caller
	// does not accept. It wraps ErrExternalToolFailed.
	ExternalToolError struct {
		Tool     string
		Args     []string
		ExitCode int
		Stdout   string
		Stderr   string
	}

	// ExecRunner runs invocations with os/exec.
	ExecRunner struct {
		execCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
		spawnPrefix []string
	}

	// ExecRunnerOption configures an ExecRunner.
	ExecRunnerOption func(*ExecRunner)
)

// ZeroOnly accepts exit code 0.
func ZeroOnly(code int) bool { return code == 0 }

// AcceptCodes returns an AcceptFunc that accepts exactly the given codes.
func AcceptCodes(codes ...int) AcceptFunc {
	return func(code int) bool { return slices.Contains(codes, code) }
}

// Error implements the error interface.
func (e *ExternalToolError) Error() string {
	var msg strings.Builder
	fmt.Fprintf(&msg, "%s %s: exit code %d", e.Tool, strings.Join(e.Args, " "), e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg.WriteString(": ")
		msg.WriteString(s)
	}
	return msg.String()
}

// Unwrap returns ErrExternalToolFailed for errors.Is() compatibility.
func (e *ExternalToolError) Unwrap() error { return ErrExternalToolFailed }

// WithHostSpawn prefixes every invocation so it runs on the host when the
// current process is sandboxed (see platform.HostSpawnPrefix).
func WithHostSpawn(st platform.SandboxType) ExecRunnerOption {
	return func(r *ExecRunner) {
		r.spawnPrefix = platform.HostSpawnPrefix(st)
	}
}

// NewExecRunner creates an ExecRunner.
func NewExecRunner(opts ...ExecRunnerOption) *ExecRunner {
	r := &ExecRunner{execCommand: exec.CommandContext}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes inv and waits for it to exit.
func (r *ExecRunner) Run(ctx context.Context, inv Invocation) (Result, error) {
	name, args := inv.Name, inv.Args
	if len(r.spawnPrefix) > 0 {
		args = append(append(slices.Clone(r.spawnPrefix[1:]), name), args...)
		name = r.spawnPrefix[0]
	}

	cmd := r.execCommand(ctx, name, args...)
	cmd.Dir = inv.Dir
	if len(inv.Env) > 0 {
		cmd.Env = append(cmd.Environ(), inv.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, fmt.Errorf("run %s: %w", inv.Name, err)
	}

	return res, nil
}

// RunChecked runs inv and converts an unaccepted exit code into an
// ExternalToolError carrying the captured streams. A nil accept means ZeroOnly.
func RunChecked(ctx context.Context, r Runner, inv Invocation, accept AcceptFunc) (Result, error) {
	if accept == nil {
		accept = ZeroOnly
	}

	res, err := r.Run(ctx, inv)
	if err != nil {
		return res, err
	}
	if !accept(res.ExitCode) {
		return res, &ExternalToolError{
			Tool:     inv.Name,
			Args:     slices.Clone(inv.Args),
			ExitCode: res.ExitCode,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
		}
	}
	return res, nil
}
