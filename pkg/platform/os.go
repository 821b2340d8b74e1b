// SPDX-License-Identifier: MPL-2.0

package platform

import "runtime"

// OS name constants for runtime.GOOS comparisons.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
)

// IsSupported reports whether goos is one of the platforms the companion
// server can be provisioned on.
func IsSupported(goos string) bool {
	switch goos {
	case Windows, Darwin, Linux:
		return true
	default:
		return false
	}
}

// IsPOSIX reports whether goos mirrors directories with POSIX tooling.
func IsPOSIX(goos string) bool {
	return goos == Darwin || goos == Linux
}

// Current returns the GOOS of the running binary.
func Current() string { return runtime.GOOS }
