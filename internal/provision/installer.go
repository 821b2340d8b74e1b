// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/moorestech/mcpsetup/internal/gitrepo"
	"github.com/moorestech/mcpsetup/internal/toolexec"
)

const (
	// DefaultRepositoryURL is the upstream repository holding the server.
	DefaultRepositoryURL = "https://github.com/moorestech/mooresUnityMCP"
	// DefaultBranch is the branch installs and updates track.
	DefaultBranch = "master"
	// DefaultRetries is how many times a failed latest-version fetch is retried.
	DefaultRetries = 2
)

// Install and update step names reported in InstallError and UpdateError.
const (
	StepCreateRoot     = "create root"
	StepInit           = "git init"
	StepRemote         = "git remote"
	StepSparseCheckout = "sparse checkout"
	StepFetch          = "git fetch"
	StepCheckout       = "git checkout"
	StepPull           = "git pull"
)

// Action is what an entry point did to the installation.
type Action int

const (
	ActionNone Action = iota
	ActionInstalled
	ActionUpdated
	ActionSynced
)

func (a Action) String() string {
	switch a {
	case ActionInstalled:
		return "installed"
	case ActionUpdated:
		return "updated"
	case ActionSynced:
		return "synced"
	default:
		return "none"
	}
}

type (
	// Outcome is the result of an entry point. Entry points never return
	// errors directly; a failure is logged and carried in Err.
	Outcome struct {
		Action           Action
		InstalledVersion string
		LatestVersion    string
		Err              error
	}

	// Source identifies the upstream repository and branch.
	Source struct {
		RepositoryURL string
		Branch        string
	}

	// Installer installs and updates the server checkout under a Layout.
	Installer struct {
		layout     Layout
		git        *gitrepo.Worktree
		latest     VersionSource
		source     Source
		logger     *slog.Logger
		retries    uint64
		newBackOff func() backoff.BackOff
	}

	// InstallerOption configures an Installer.
	InstallerOption func(*Installer)
)

// OK reports whether the entry point succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// WithGit sets the worktree used for git operations. Its Dir must be the
// layout root.
func WithGit(w *gitrepo.Worktree) InstallerOption {
	return func(i *Installer) { i.git = w }
}

// WithLatestVersionSource sets where the latest version is read from.
func WithLatestVersionSource(src VersionSource) InstallerOption {
	return func(i *Installer) { i.latest = src }
}

// WithSource overrides the upstream repository and branch. Empty fields keep
// their defaults.
func WithSource(s Source) InstallerOption {
	return func(i *Installer) {
		if s.RepositoryURL != "" {
			i.source.RepositoryURL = s.RepositoryURL
		}
		if s.Branch != "" {
			i.source.Branch = s.Branch
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) InstallerOption {
	return func(i *Installer) { i.logger = l }
}

// WithRetries sets how many times a network failure while fetching the
// latest version is retried.
func WithRetries(n uint64) InstallerOption {
	return func(i *Installer) { i.retries = n }
}

// WithBackOff sets the backoff policy factory used between retries.
func WithBackOff(f func() backoff.BackOff) InstallerOption {
	return func(i *Installer) { i.newBackOff = f }
}

// NewInstaller creates an Installer for layout.
func NewInstaller(layout Layout, opts ...InstallerOption) *Installer {
	i := &Installer{
		layout:     layout,
		source:     Source{RepositoryURL: DefaultRepositoryURL, Branch: DefaultBranch},
		retries:    DefaultRetries,
		newBackOff: defaultBackOff,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.git == nil {
		i.git = gitrepo.NewWorktree(layout.Root, "git", toolexec.NewExecRunner())
	}
	if i.latest == nil {
		i.latest = NewRemoteResolver()
	}
	if i.logger == nil {
		i.logger = slog.New(slog.DiscardHandler)
	}
	return i
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 30 * time.Second
	return b
}

// Layout returns the layout the installer operates on.
func (i *Installer) Layout() Layout { return i.layout }

// ServerPath returns the directory the server is launched from.
func (i *Installer) ServerPath() string { return i.layout.ServerPath() }

// InstalledVersion returns the version of the installed server.
func (i *Installer) InstalledVersion() (string, error) {
	return InstalledVersion(i.layout)
}

// LatestVersion returns the upstream version without retrying.
func (i *Installer) LatestVersion(ctx context.Context) (string, error) {
	return i.latest.LatestVersion(ctx)
}

// Ensure installs the server when absent, updates it when upstream is
// newer, and otherwise leaves it untouched.
func (i *Installer) Ensure(ctx context.Context) Outcome {
	out, err := i.ensure(ctx)
	if err != nil {
		i.logger.Error("ensure server installation failed", "root", i.layout.Root, "error", err)
		out.Err = err
	}
	return out
}

// ForceUpdate discards local modifications and pulls, or installs when the
// server is absent. It does not read the installed manifest first.
func (i *Installer) ForceUpdate(ctx context.Context) Outcome {
	out, err := i.forceUpdate(ctx)
	if err != nil {
		i.logger.Error("force update failed", "root", i.layout.Root, "error", err)
		out.Err = err
	}
	return out
}

func (i *Installer) ensure(ctx context.Context) (Outcome, error) {
	state, err := Detect(i.layout)
	if err != nil {
		return Outcome{}, err
	}

	if state.Kind == StateAbsent {
		i.logger.Info("server not installed, installing", "root", i.layout.Root)
		if err := i.install(ctx); err != nil {
			return Outcome{}, err
		}
		return i.settled(ActionInstalled, ""), nil
	}

	out := Outcome{InstalledVersion: state.Version}
	latest, err := i.fetchLatest(ctx)
	if err != nil {
		return out, err
	}
	out.LatestVersion = latest

	newer, err := IsNewer(latest, state.Version)
	if err != nil {
		return out, err
	}
	if !newer {
		i.logger.Debug("server is up to date", "installed", state.Version, "latest", latest)
		return out, nil
	}

	i.logger.Info("updating server", "installed", state.Version, "latest", latest)
	if err := i.update(ctx); err != nil {
		return out, err
	}
	return i.settled(ActionUpdated, latest), nil
}

func (i *Installer) forceUpdate(ctx context.Context) (Outcome, error) {
	if !IsInstalled(i.layout) {
		i.logger.Info("server not installed, installing", "root", i.layout.Root)
		if err := i.install(ctx); err != nil {
			return Outcome{}, err
		}
		return i.settled(ActionInstalled, ""), nil
	}

	if err := i.git.ResetHard(ctx); err != nil {
		i.logger.Warn("reset before force update failed, pulling anyway", "root", i.layout.Root, "error", err)
	}
	if err := i.update(ctx); err != nil {
		return Outcome{}, err
	}
	return i.settled(ActionUpdated, ""), nil
}

// settled builds the outcome of a successful mutation, re-reading the
// installed version from disk.
func (i *Installer) settled(action Action, latest string) Outcome {
	out := Outcome{Action: action, LatestVersion: latest}
	version, err := InstalledVersion(i.layout)
	if err != nil {
		i.logger.Warn("could not read installed version", "manifest", i.layout.ManifestPath(), "error", err)
		return out
	}
	out.InstalledVersion = version
	i.logger.Info("server ready", "action", action.String(), "version", version, "path", i.layout.ServerPath())
	return out
}

func (i *Installer) install(ctx context.Context) error {
	if err := os.MkdirAll(i.layout.Root, 0o755); err != nil {
		return &InstallError{Step: StepCreateRoot, Err: err}
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{StepInit, func() error { return i.git.Init(ctx) }},
		{StepRemote, func() error { return i.git.SetRemote(ctx, gitrepo.DefaultRemote, i.source.RepositoryURL) }},
		{StepSparseCheckout, func() error { return i.git.EnableSparseCheckout(ctx, i.layout.ServerFolder) }},
		{StepFetch, func() error { return i.git.FetchShallow(ctx, gitrepo.DefaultRemote, i.source.Branch, 1) }},
		{StepCheckout, func() error { return i.git.Checkout(ctx, i.source.Branch) }},
	}
	for _, step := range steps {
		i.logger.Debug("install step", "step", step.name, "dir", i.layout.Root)
		if err := step.run(); err != nil {
			return &InstallError{Step: step.name, Err: err}
		}
	}
	return nil
}

func (i *Installer) update(ctx context.Context) error {
	if err := i.git.Pull(ctx, gitrepo.DefaultRemote, i.source.Branch); err != nil {
		return &UpdateError{Step: StepPull, Err: err}
	}
	return nil
}

// fetchLatest retries network failures with backoff. Any other error, such
// as a malformed remote manifest, stops immediately.
func (i *Installer) fetchLatest(ctx context.Context) (string, error) {
	var latest string
	op := func() error {
		v, err := i.latest.LatestVersion(ctx)
		if err != nil {
			if errors.Is(err, ErrNetwork) {
				return err
			}
			return backoff.Permanent(err)
		}
		latest = v
		return nil
	}
	notify := func(err error, wait time.Duration) {
		i.logger.Debug("latest version fetch failed, retrying", "wait", wait, "error", err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(i.newBackOff(), i.retries), ctx)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return "", err
	}
	return latest, nil
}
