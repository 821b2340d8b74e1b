// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"fmt"
	"strings"
)

const versionKey = "version"

// ParseManifestVersion extracts the value of the first `version = ...` line
// in a pyproject.toml body. Only that line is inspected; the rest of the
// document is not parsed. One pair of matching " or ' quotes is removed.
func ParseManifestVersion(text string) (string, error) {
	for line := range strings.SplitSeq(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if !isVersionLine(trimmed) {
			continue
		}

		_, raw, _ := strings.Cut(trimmed, "=")
		value, err := unquote(strings.TrimSpace(raw))
		if err != nil {
			return "", fmt.Errorf("%w: %q: %w", ErrMalformedManifest, trimmed, err)
		}
		if value == "" {
			return "", fmt.Errorf("%w: empty version in %q", ErrMalformedManifest, trimmed)
		}
		return value, nil
	}
	return "", ErrVersionNotFound
}

// isVersionLine matches "version =", tolerating any run of spaces before
// the equals sign but not other keys sharing the prefix (version_file).
func isVersionLine(line string) bool {
	rest, ok := strings.CutPrefix(line, versionKey)
	if !ok {
		return false
	}
	return strings.HasPrefix(strings.TrimLeft(rest, " \t"), "=")
}

func unquote(v string) (string, error) {
	if v == "" {
		return "", nil
	}
	first := v[0]
	if first != '"' && first != '\'' {
		if last := v[len(v)-1]; last == '"' || last == '\'' {
			return "", fmt.Errorf("unbalanced quote")
		}
		return v, nil
	}
	if len(v) < 2 || v[len(v)-1] != first {
		return "", fmt.Errorf("unbalanced quote")
	}
	return v[1 : len(v)-1], nil
}
