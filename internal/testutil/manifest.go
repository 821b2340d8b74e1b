// SPDX-License-Identifier: MPL-2.0

package testutil

import "testing"

// ManifestContent returns a pyproject.toml body. An empty version omits the
// version line, producing a manifest that fails to parse.
func ManifestContent(version string) string {
	content := "[project]\nname = \"UnityMcpServer\"\n"
	if version != "" {
		content += "version = \"" + version + "\"\n"
	}
	return content + "dependencies = [\"mcp\"]\n"
}

// WriteManifest writes ManifestContent(version) to path.
func WriteManifest(t testing.TB, path, version string) {
	t.Helper()
	MustWriteFile(t, path, ManifestContent(version))
}
