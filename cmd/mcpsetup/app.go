// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/moorestech/mcpsetup/internal/config"
	"github.com/moorestech/mcpsetup/internal/gitrepo"
	"github.com/moorestech/mcpsetup/internal/logging"
	"github.com/moorestech/mcpsetup/internal/provision"
	"github.com/moorestech/mcpsetup/internal/toolexec"
	"github.com/moorestech/mcpsetup/pkg/platform"
)

// errConfigUnavailable marks failures to load or validate configuration.
var errConfigUnavailable = errors.New("configuration unavailable")

type (
	// App wires CLI services and shared dependencies. All Cobra command
	// handlers receive an App reference and build their per-invocation
	// session through it.
	App struct {
		Config     ConfigProvider
		Runner     toolexec.Runner
		HTTPClient *http.Client
		Env        provision.Environment
		stdout     io.Writer
		stderr     io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config     ConfigProvider
		Runner     toolexec.Runner
		HTTPClient *http.Client
		// Env describes the host. A zero GOOS selects provision.HostEnvironment.
		Env    provision.Environment
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// rootFlags holds the persistent flags shared by every command.
	rootFlags struct {
		configPath string
		verbose    bool
		root       string
		logFormat  string
	}

	// session is everything one command invocation needs, resolved from
	// configuration and flags.
	session struct {
		cfg       *config.Config
		logger    *slog.Logger
		layout    provision.Layout
		remote    *provision.RemoteResolver
		installer *provision.Installer
		mirror    *provision.Mirror
	}
)

// NewApp creates an App, filling nil dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:     deps.Config,
		Runner:     deps.Runner,
		HTTPClient: deps.HTTPClient,
		Env:        deps.Env,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Runner == nil {
		app.Runner = toolexec.NewExecRunner(toolexec.WithHostSpawn(platform.DetectSandbox()))
	}
	if app.Env.GOOS == "" {
		app.Env = provision.HostEnvironment()
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// loadConfig loads configuration honoring --config.
func (a *App) loadConfig(ctx context.Context, flags *rootFlags) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errConfigUnavailable, err)
	}
	return cfg, nil
}

// session loads configuration and builds the provisioning services for one
// command invocation. Flags take precedence over configuration.
func (a *App) session(ctx context.Context, flags *rootFlags) (*session, error) {
	cfg, err := a.loadConfig(ctx, flags)
	if err != nil {
		return nil, err
	}

	logger, err := a.newLogger(cfg, flags)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errConfigUnavailable, err)
	}

	rootOverride := cfg.Install.Root
	if flags.root != "" {
		rootOverride = flags.root
	}
	layout, err := provision.NewLayout(a.Env, provision.LayoutOptions{
		RootOverride: rootOverride,
		RootFolder:   cfg.Install.RootFolder,
		ServerFolder: cfg.Install.ServerFolder,
	})
	if err != nil {
		return nil, err
	}

	remoteOpts := []provision.RemoteOption{
		provision.WithManifestURL(cfg.Source.ManifestURL),
		provision.WithTimeout(cfg.Remote.Timeout),
		provision.WithUserAgent(config.AppName + "/" + Version),
	}
	if a.HTTPClient != nil {
		remoteOpts = append(remoteOpts, provision.WithHTTPClient(a.HTTPClient))
	}
	remote := provision.NewRemoteResolver(remoteOpts...)

	installer := provision.NewInstaller(layout,
		provision.WithGit(gitrepo.NewWorktree(layout.Root, cfg.Tools.Git, a.Runner)),
		provision.WithLatestVersionSource(remote),
		provision.WithSource(provision.Source{
			RepositoryURL: cfg.Source.RepositoryURL,
			Branch:        cfg.Source.Branch,
		}),
		provision.WithLogger(logger),
		provision.WithRetries(uint64(max(cfg.Remote.Retries, 0))),
	)

	s := &session{
		cfg:       cfg,
		logger:    logger,
		layout:    layout,
		remote:    remote,
		installer: installer,
	}
	s.mirror = a.newMirror(s, provision.MirrorStrategy(cfg.Mirror.Strategy))
	return s, nil
}

// newMirror builds a Mirror for the session's layout using strategy.
func (a *App) newMirror(s *session, strategy provision.MirrorStrategy) *provision.Mirror {
	return provision.NewMirror(s.layout,
		provision.WithMirrorRunner(a.Runner),
		provision.WithStrategy(strategy),
		provision.WithExcludes(provision.Excludes{
			Dirs:  s.cfg.Mirror.ExcludeDirs,
			Files: s.cfg.Mirror.ExcludeFiles,
		}),
		provision.WithTools(s.cfg.Tools.Rsync, s.cfg.Tools.Robocopy),
		provision.WithPlatform(a.Env.GOOS),
		provision.WithMirrorLogger(s.logger),
	)
}

func (a *App) newLogger(cfg *config.Config, flags *rootFlags) (*slog.Logger, error) {
	level := cfg.Log.Level.String()
	if flags.verbose {
		level = string(config.LogLevelDebug)
	}
	format := cfg.Log.Format.String()
	if flags.logFormat != "" {
		format = flags.logFormat
	}
	return logging.New(a.stderr, logging.Options{
		Level:  level,
		Format: logging.Format(format),
	})
}
