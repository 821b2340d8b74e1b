// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/moorestech/mcpsetup/internal/config"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Install, update, and sync the Unity MCP companion server",
		Long: TitleStyle.Render(config.AppName) + SubtitleStyle.Render(" - Unity MCP companion server lifecycle manager") + `

mcpsetup keeps a sparse git checkout of the UnityMcpServer folder in a
per-user installation root and updates it when the upstream pyproject.toml
advertises a newer version. Developers can mirror their local server
folder over the installation instead.

` + SubtitleStyle.Render("Examples:") + `
  mcpsetup ensure                       Install or update the server
  mcpsetup path                         Print the server path for the MCP client
  mcpsetup status --check-remote        Show installation details and updates
  mcpsetup sync-local --data-dir Assets Mirror a local checkout
  mcpsetup config show                  Show the effective configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default is "+defaultConfigHint()+")")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&flags.root, "root", "", "installation root (overrides install.root and the per-OS default)")
	pf.StringVar(&flags.logFormat, "log-format", "", "log format: text, json, or logfmt")

	rootCmd.AddCommand(
		newEnsureCommand(app, flags),
		newForceUpdateCommand(app, flags),
		newSyncLocalCommand(app, flags),
		newVersionCommand(app, flags),
		newPathCommand(app, flags),
		newStatusCommand(app, flags),
		newConfigCommand(app, flags),
	)
	return rootCmd
}

func defaultConfigHint() string {
	if path, err := config.DefaultConfigPath(); err == nil {
		return path
	}
	return "config.cue in the user config directory"
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// handleError prints errors that were not already reported by a handler.
func handleError(w io.Writer, _ fang.Styles, err error) {
	if exitErr, ok := asExitError(err); ok && exitErr.Err == nil {
		return
	}
	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, false))
}

// Run executes the CLI with os.Args and returns the process exit code.
func Run() int {
	return run(context.Background(), NewApp(Dependencies{}))
}

func run(ctx context.Context, app *App) int {
	err := fang.Execute(
		ctx,
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithErrorHandler(handleError),
		fang.WithNotifySignal(os.Interrupt),
	)
	return exitCodeOf(err)
}

// Execute runs the CLI and exits the process. It is called by main.main().
func Execute() {
	os.Exit(Run())
}
