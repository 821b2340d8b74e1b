// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moorestech/mcpsetup/internal/config"
)

// newConfigCommand creates the `mcpsetup config` command tree.
func newConfigCommand(app *App, flags *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage mcpsetup configuration",
		Long: `Manage mcpsetup configuration.

Configuration is stored in:
  - Linux: ~/.config/mcpsetup/config.cue
  - macOS: ~/Library/Application Support/mcpsetup/config.cue
  - Windows: %APPDATA%\mcpsetup\config.cue

Every key can be overridden with an ` + config.EnvPrefix + `_<SECTION>_<KEY> variable.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd.Context(), flags)
			if err != nil {
				return app.fail(flags, "load configuration", flags.configPath, err)
			}
			showConfig(app.stdout, cfg)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path, err := configPath(flags)
			if err != nil {
				return app.fail(flags, "resolve configuration path", "", err)
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path, err := configPath(flags)
			if err != nil {
				return app.fail(flags, "resolve configuration path", "", err)
			}
			created, err := config.CreateDefaultConfig(path)
			if err != nil {
				return app.fail(flags, "create configuration", path, err)
			}
			if !created {
				fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd.Context(), flags)
			if err != nil {
				return app.fail(flags, "load configuration", flags.configPath, err)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

// configPath returns --config when set, else the default config file path.
func configPath(flags *rootFlags) (string, error) {
	if flags.configPath != "" {
		return flags.configPath, nil
	}
	return config.DefaultConfigPath()
}

func showConfig(w io.Writer, cfg *config.Config) {
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if cfg.SourcePath != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), cfg.SourcePath)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	section := func(name string, kv ...string) {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s:\n", keyStyle.Render(name))
		for i := 0; i+1 < len(kv); i += 2 {
			value := kv[i+1]
			if value == "" {
				value = SubtitleStyle.Render("(unset)")
			} else {
				value = valueStyle.Render(value)
			}
			fmt.Fprintf(w, "  %s: %s\n", kv[i], value)
		}
	}

	section("install",
		"root", cfg.Install.Root,
		"root_folder", cfg.Install.RootFolder,
		"server_folder", cfg.Install.ServerFolder)
	section("source",
		"repository_url", cfg.Source.RepositoryURL,
		"branch", cfg.Source.Branch,
		"manifest_url", cfg.Source.ManifestURL)
	section("remote",
		"timeout", cfg.Remote.Timeout.String(),
		"retries", fmt.Sprint(cfg.Remote.Retries))
	section("tools",
		"git", cfg.Tools.Git,
		"rsync", cfg.Tools.Rsync,
		"robocopy", cfg.Tools.Robocopy)
	section("mirror",
		"strategy", cfg.Mirror.Strategy.String(),
		"exclude_dirs", strings.Join(cfg.Mirror.ExcludeDirs, ", "),
		"exclude_files", strings.Join(cfg.Mirror.ExcludeFiles, ", "))
	section("project",
		"data_dir", cfg.Project.DataDir,
		"anchor_levels", fmt.Sprint(cfg.Project.AnchorLevels))
	section("log",
		"level", cfg.Log.Level.String(),
		"format", cfg.Log.Format.String())
}
