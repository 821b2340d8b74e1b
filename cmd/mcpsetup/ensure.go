// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/moorestech/mcpsetup/internal/provision"
)

func newEnsureCommand(app *App, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ensure",
		Short: "Install the server, or update it when upstream is newer",
		Long: `Install the server when it is absent. When it is present, compare the
installed version with the upstream manifest and pull when upstream is
newer. Running ensure twice in a row performs no work the second time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.session(cmd.Context(), flags)
			if err != nil {
				return app.fail(flags, "prepare installation", "", err)
			}

			out := s.installer.Ensure(cmd.Context())
			if !out.OK() {
				return app.fail(flags, "ensure server installation", s.layout.Root, out.Err)
			}
			printOutcome(app.stdout, out, s.layout)
			return nil
		},
	}
}

func newForceUpdateCommand(app *App, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "force-update",
		Short: "Discard local changes and pull the upstream server",
		Long: `Reset the installed checkout to HEAD and pull the tracked branch without
consulting the installed version. A reset failure is logged and the pull is
attempted anyway, so force-update also repairs a corrupt installation. When
the server is absent it is installed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.session(cmd.Context(), flags)
			if err != nil {
				return app.fail(flags, "prepare installation", "", err)
			}

			out := s.installer.ForceUpdate(cmd.Context())
			if !out.OK() {
				return app.fail(flags, "force update", s.layout.Root, out.Err)
			}
			printOutcome(app.stdout, out, s.layout)
			return nil
		},
	}
}

// printOutcome writes a one-line summary of a successful entry point
// followed by the server path.
func printOutcome(w io.Writer, out provision.Outcome, layout provision.Layout) {
	version := out.InstalledVersion
	if version == "" {
		version = "unknown"
	}

	var line string
	switch out.Action {
	case provision.ActionInstalled:
		line = "Installed server " + version
	case provision.ActionUpdated:
		line = "Updated server to " + version
	case provision.ActionSynced:
		line = "Synced local server " + version
	default:
		line = "Server is up to date (" + version + ")"
	}

	fmt.Fprintln(w, SuccessStyle.Render("✓ ")+line)
	fmt.Fprintln(w, "  "+CmdStyle.Render(layout.ServerPath()))
}
