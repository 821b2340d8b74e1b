// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedPlatform is returned when the host OS has no install root.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	// ErrNotInstalled is returned when the server root or its manifest is absent.
	ErrNotInstalled = errors.New("server is not installed")
	// ErrVersionNotFound is returned when a manifest has no version line.
	ErrVersionNotFound = errors.New("version not found in manifest")
	// ErrMalformedManifest is returned when a version line cannot be read.
	ErrMalformedManifest = errors.New("malformed manifest")
	// ErrMalformedVersion is returned when a version string is not dotted numeric.
	ErrMalformedVersion = errors.New("malformed version")
	// ErrNetwork is returned when the upstream manifest cannot be fetched.
	ErrNetwork = errors.New("network error")
	// ErrInstallFailed is wrapped by every InstallError.
	ErrInstallFailed = errors.New("install failed")
	// ErrUpdateFailed is wrapped by every UpdateError.
	ErrUpdateFailed = errors.New("update failed")
	// ErrLocalSourceNotFound is returned when the local mirror source is missing.
	ErrLocalSourceNotFound = errors.New("local server source not found")
	// ErrMirrorFailed is wrapped by every MirrorError.
	ErrMirrorFailed = errors.New("mirror failed")
)

type (
	// InstallError records the install step that failed.
	InstallError struct {
		Step string
		Err  error
	}

	// UpdateError records the update step that failed.
	UpdateError struct {
		Step string
		Err  error
	}

	// MirrorError records the mirror step that failed.
	MirrorError struct {
		Step string
		Err  error
	}
)

func (e *InstallError) Error() string {
	return fmt.Sprintf("install failed at %s: %v", e.Step, e.Err)
}

// Unwrap exposes both ErrInstallFailed and the underlying cause.
func (e *InstallError) Unwrap() []error { return []error{ErrInstallFailed, e.Err} }

func (e *UpdateError) Error() string {
	return fmt.Sprintf("update failed at %s: %v", e.Step, e.Err)
}

// Unwrap exposes both ErrUpdateFailed and the underlying cause.
func (e *UpdateError) Unwrap() []error { return []error{ErrUpdateFailed, e.Err} }

func (e *MirrorError) Error() string {
	return fmt.Sprintf("mirror failed at %s: %v", e.Step, e.Err)
}

// Unwrap exposes both ErrMirrorFailed and the underlying cause.
func (e *MirrorError) Unwrap() []error { return []error{ErrMirrorFailed, e.Err} }
