// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/moorestech/mcpsetup/internal/gitrepo"
	"github.com/moorestech/mcpsetup/internal/provision"
)

func newStatusCommand(app *App, flags *rootFlags) *cobra.Command {
	var checkRemote bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the installation state",
		Long: `Show the installation root, the server path, the installed version, and
the branch and commit of the working copy. With --check-remote the upstream
manifest is fetched and an available update is reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.session(cmd.Context(), flags)
			if err != nil {
				return app.fail(flags, "prepare status", "", err)
			}

			w := app.stdout
			fmt.Fprintln(w, TitleStyle.Render("Server Status"))
			fmt.Fprintln(w)
			statusLine(w, "Root", CmdStyle.Render(s.layout.Root))
			statusLine(w, "Server path", CmdStyle.Render(s.layout.ServerPath()))

			state, stateErr := provision.Detect(s.layout)
			switch {
			case stateErr != nil:
				statusLine(w, "Installed", ErrorStyle.Render("unreadable")+" "+VerboseStyle.Render(stateErr.Error()))
			case state.Kind == provision.StateAbsent:
				statusLine(w, "Installed", SubtitleStyle.Render("not installed"))
			default:
				statusLine(w, "Installed", SuccessStyle.Render(state.Version))
			}

			statusLine(w, "Working copy", workingCopy(s.layout.Root))

			if checkRemote {
				statusLine(w, "Latest", latestStatus(cmd, s, state, stateErr))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkRemote, "check-remote", false, "fetch the upstream manifest and report available updates")
	return cmd
}

func statusLine(w io.Writer, label, value string) {
	fmt.Fprintln(w, statusLabelStyle.Render(label)+value)
}

// workingCopy describes the git checkout at root using go-git.
func workingCopy(root string) string {
	if !gitrepo.IsRepository(root) {
		return SubtitleStyle.Render("not a git repository")
	}
	head, err := gitrepo.Head(root)
	if err != nil {
		if errors.Is(err, gitrepo.ErrNoCommits) {
			return WarningStyle.Render("no commits")
		}
		return ErrorStyle.Render("unreadable") + " " + VerboseStyle.Render(err.Error())
	}
	branch := head.Branch
	if branch == "" {
		branch = "detached"
	}
	return branch + " @ " + CmdStyle.Render(head.ShortCommit())
}

func latestStatus(cmd *cobra.Command, s *session, state provision.State, stateErr error) string {
	latest, err := s.installer.LatestVersion(cmd.Context())
	if err != nil {
		return ErrorStyle.Render("unavailable") + " " + VerboseStyle.Render(err.Error())
	}
	if stateErr != nil || state.Kind == provision.StateAbsent {
		return latest
	}

	newer, err := provision.IsNewer(latest, state.Version)
	switch {
	case err != nil:
		return latest + " " + VerboseStyle.Render(err.Error())
	case newer:
		return WarningStyle.Render(latest+" (update available)") + " run " + CmdStyle.Render("mcpsetup ensure")
	default:
		return SuccessStyle.Render(latest + " (up to date)")
	}
}
