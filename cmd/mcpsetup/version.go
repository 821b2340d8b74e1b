// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/moorestech/mcpsetup/internal/provision"
)

func newVersionCommand(app *App, flags *rootFlags) *cobra.Command {
	var installed, latest bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the installed or upstream server version",
		Long: `Print server versions. --installed prints the version read from the
installed pyproject.toml and fails when the server is absent. --latest
fetches the upstream manifest. Without flags, the tool version and the
installed version are printed and no network access is made.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.session(cmd.Context(), flags)
			if err != nil {
				return app.fail(flags, "prepare version query", "", err)
			}

			switch {
			case installed || latest:
				if installed {
					v, err := s.installer.InstalledVersion()
					if err != nil {
						return app.fail(flags, "read installed version", s.layout.ManifestPath(), err)
					}
					fmt.Fprintln(app.stdout, v)
				}
				if latest {
					v, err := s.installer.LatestVersion(cmd.Context())
					if err != nil {
						return app.fail(flags, "fetch latest version", s.remote.ManifestURL(), err)
					}
					fmt.Fprintln(app.stdout, v)
				}
			default:
				fmt.Fprintf(app.stdout, "mcpsetup %s\n", getVersionString())
				v, err := s.installer.InstalledVersion()
				switch {
				case err == nil:
					fmt.Fprintf(app.stdout, "server %s\n", v)
				case errors.Is(err, provision.ErrNotInstalled):
					fmt.Fprintf(app.stdout, "server %s\n", SubtitleStyle.Render("not installed"))
				default:
					return app.fail(flags, "read installed version", s.layout.ManifestPath(), err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&installed, "installed", false, "print only the installed server version")
	cmd.Flags().BoolVar(&latest, "latest", false, "print only the upstream server version")
	return cmd
}
