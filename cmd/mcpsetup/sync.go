// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/moorestech/mcpsetup/internal/provision"
)

func newSyncLocalCommand(app *App, flags *rootFlags) *cobra.Command {
	var (
		dataDir  string
		source   string
		strategy string
		levels   int
	)

	cmd := &cobra.Command{
		Use:   "sync-local",
		Short: "Mirror a local UnityMcpServer folder over the installation",
		Long: `Make the installed server folder an exact copy of a developer-local one.
The source is --source, or the server folder found --anchor-levels parents
above --data-dir (project.data_dir in the configuration). Python caches,
virtual environments and VCS metadata are neither copied nor deleted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.session(cmd.Context(), flags)
			if err != nil {
				return app.fail(flags, "prepare local sync", "", err)
			}

			mirror := s.mirror
			if strategy != "" {
				st := provision.MirrorStrategy(strategy)
				if err := st.Validate(); err != nil {
					return app.fail(flags, "sync local server", "", err)
				}
				mirror = app.newMirror(s, st)
			}

			src := source
			if src == "" {
				anchor := dataDir
				if anchor == "" {
					anchor = s.cfg.Project.DataDir
				}
				n := s.cfg.Project.AnchorLevels
				if cmd.Flags().Changed("anchor-levels") {
					n = levels
				}
				src, err = provision.LocalSource(anchor, n, s.layout.ServerFolder)
				if err != nil {
					return app.fail(flags, "locate local server", anchor, err)
				}
			}

			out := mirror.Sync(cmd.Context(), src)
			if !out.OK() {
				return app.fail(flags, "sync local server", src, out.Err)
			}
			printOutcome(app.stdout, out, s.layout)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "host project data directory used to locate the server folder")
	cmd.Flags().StringVar(&source, "source", "", "server folder to mirror (overrides --data-dir)")
	cmd.Flags().StringVar(&strategy, "strategy", "", "mirror strategy: auto, rsync, robocopy, or native")
	cmd.Flags().IntVar(&levels, "anchor-levels", provision.DefaultAnchorLevels, "parents of --data-dir holding the server folder")
	return cmd
}
