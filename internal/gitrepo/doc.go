// SPDX-License-Identifier: MPL-2.0

// Package gitrepo drives the git working copy that holds the companion server.
//
// Mutating operations (init, remote, sparse checkout, fetch, checkout, pull,
// reset) shell out to the git CLI through a toolexec.Runner so the working
// copy behaves exactly like one a user created by hand. Read-only inspection
// of HEAD uses go-git and needs no git binary.
package gitrepo
