// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that fail the test
// on error instead of returning it.
//
// Helpers cover the working directory (MustChdir), environment variables
// (MustSetenv, SetHomeDir), files (MustMkdirAll, MustWriteFile), and server
// manifests (ManifestContent, WriteManifest).
package testutil
