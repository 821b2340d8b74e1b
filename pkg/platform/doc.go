// SPDX-License-Identifier: MPL-2.0

// Package platform provides operating system identity and host-process
// helpers shared by the provisioning packages.
//
// OS names are compared against runtime.GOOS through the constants in this
// package so the supported set lives in one place. Sandbox detection lets
// the tool runner reach host binaries (git, rsync) when the editor that
// embeds the bridge runs inside a Flatpak.
package platform
