// SPDX-License-Identifier: MPL-2.0

// Package logging builds the *slog.Logger shared by mcpsetup commands. Records
// are rendered by a charmbracelet/log handler in text, JSON, or logfmt form.
package logging
