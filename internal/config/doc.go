// SPDX-License-Identifier: MPL-2.0

// Package config handles mcpsetup configuration using Viper with CUE as the
// file format.
//
// Configuration is loaded from config.cue in the platform config directory
// ($XDG_CONFIG_HOME/mcpsetup or ~/.config/mcpsetup on Linux,
// ~/Library/Application Support/mcpsetup on macOS, %APPDATA%\mcpsetup on
// Windows), falling back to ./config.cue. Files are validated against the
// embedded config_schema.cue before they are merged over the defaults, and
// MCPSETUP_<SECTION>_<KEY> environment variables override both.
package config
