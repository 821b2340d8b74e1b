// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// pathKinds lists the locations the path command can print.
var pathKinds = []string{"server", "dir", "root", "manifest"}

func newPathCommand(app *App, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "path [server|dir|root|manifest]",
		Short: "Print an installation path",
		Long: `Print a path of the installation layout without touching the filesystem.

  server    the server source directory MCP clients launch (default)
  dir       the UnityMcpServer folder
  root      the installation root
  manifest  the installed pyproject.toml`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: pathKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd.Context(), flags)
			if err != nil {
				return app.fail(flags, "resolve installation path", "", err)
			}

			kind := "server"
			if len(args) == 1 {
				kind = args[0]
			}

			var path string
			switch kind {
			case "dir":
				path = s.layout.ServerDir()
			case "root":
				path = s.layout.Root
			case "manifest":
				path = s.layout.ManifestPath()
			default:
				path = s.installer.ServerPath()
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	}
}
