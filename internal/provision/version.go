// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"fmt"
	"strconv"
	"strings"
)

// Ordering is the result of comparing two versions.
type Ordering int

const (
	Older Ordering = iota - 1
	Equal
	Newer
)

// Version is a dotted sequence of non-negative integers. Unlike semver,
// "1.2.0" is newer than "1.2": a longer version with an equal prefix wins.
type Version struct {
	raw   string
	parts []uint64
}

// ParseVersion parses a dotted numeric version such as "0.4.12".
func ParseVersion(s string) (Version, error) {
	fields := strings.Split(s, ".")
	parts := make([]uint64, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrMalformedVersion, s)
		}
		parts = append(parts, n)
	}
	return Version{raw: s, parts: parts}, nil
}

// String returns the version as it was parsed.
func (v Version) String() string { return v.raw }

// Compare orders a relative to b.
func Compare(a, b Version) Ordering {
	n := min(len(a.parts), len(b.parts))
	for i := range n {
		switch {
		case a.parts[i] > b.parts[i]:
			return Newer
		case a.parts[i] < b.parts[i]:
			return Older
		}
	}
	switch {
	case len(a.parts) > len(b.parts):
		return Newer
	case len(a.parts) < len(b.parts):
		return Older
	default:
		return Equal
	}
}

// IsNewer reports whether remote is strictly newer than local.
func IsNewer(remote, local string) (bool, error) {
	r, err := ParseVersion(remote)
	if err != nil {
		return false, err
	}
	l, err := ParseVersion(local)
	if err != nil {
		return false, err
	}
	return Compare(r, l) == Newer, nil
}
