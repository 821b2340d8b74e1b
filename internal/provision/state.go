// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// StateKind distinguishes an absent installation from a present one.
type StateKind int

const (
	StateAbsent StateKind = iota
	StatePresent
)

// State is the derived installation state. Version is set only when present.
type State struct {
	Kind    StateKind
	Version string
}

// String returns "absent" or "present".
func (k StateKind) String() string {
	if k == StatePresent {
		return "present"
	}
	return "absent"
}

// IsInstalled reports whether the root is a directory and the manifest is a
// regular file. It does not parse the manifest.
func IsInstalled(layout Layout) bool {
	root, err := os.Stat(layout.Root)
	if err != nil || !root.IsDir() {
		return false
	}
	manifest, err := os.Stat(layout.ManifestPath())
	return err == nil && manifest.Mode().IsRegular()
}

// InstalledVersion reads the version from the installed manifest.
func InstalledVersion(layout Layout) (string, error) {
	data, err := os.ReadFile(layout.ManifestPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotInstalled, layout.ManifestPath())
		}
		return "", fmt.Errorf("read manifest %s: %w", layout.ManifestPath(), err)
	}

	version, err := ParseManifestVersion(string(data))
	if err != nil {
		if errors.Is(err, ErrMalformedManifest) {
			return "", fmt.Errorf("%s: %w", layout.ManifestPath(), err)
		}
		return "", fmt.Errorf("%w: %s: %w", ErrMalformedManifest, layout.ManifestPath(), err)
	}
	return version, nil
}

// Detect returns the installation state. A present manifest that cannot be
// parsed is an error, not an absent installation.
func Detect(layout Layout) (State, error) {
	if !IsInstalled(layout) {
		return State{Kind: StateAbsent}, nil
	}
	version, err := InstalledVersion(layout)
	if err != nil {
		return State{}, err
	}
	return State{Kind: StatePresent, Version: version}, nil
}
