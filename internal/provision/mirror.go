// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/moorestech/mcpsetup/internal/toolexec"
	"github.com/moorestech/mcpsetup/pkg/platform"
)

// DefaultAnchorLevels is how many parents of the host data directory lead to
// the repository holding the local server folder (<repo>/<project>/Assets).
const DefaultAnchorLevels = 2

// MirrorStrategy selects how a local source is mirrored into the installation.
type MirrorStrategy string

const (
	StrategyAuto     MirrorStrategy = "auto"
	StrategyRsync    MirrorStrategy = "rsync"
	StrategyRobocopy MirrorStrategy = "robocopy"
	StrategyNative   MirrorStrategy = "native"
)

// ErrInvalidMirrorStrategy is returned for an unknown strategy name.
var ErrInvalidMirrorStrategy = errors.New("invalid mirror strategy")

// robocopy reports success with exit codes below 4 (files copied, extras
// removed, mismatches detected).
var robocopyAccept = toolexec.AcceptCodes(0, 1, 2, 3)

// Validate returns ErrInvalidMirrorStrategy for unknown values.
func (s MirrorStrategy) Validate() error {
	switch s {
	case StrategyAuto, StrategyRsync, StrategyRobocopy, StrategyNative:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMirrorStrategy, string(s))
	}
}

type (
	// Excludes lists transient artifacts that are neither copied nor deleted.
	// Dirs match directory base names; Files are filepath.Match patterns on
	// file base names.
	Excludes struct {
		Dirs  []string
		Files []string
	}

	// Mirror copies a developer-local server folder over the installed one.
	Mirror struct {
		layout   Layout
		runner   toolexec.Runner
		strategy MirrorStrategy
		excludes Excludes
		rsync    string
		robocopy string
		goos     string
		lookPath func(string) (string, error)
		logger   *slog.Logger
	}

	// MirrorOption configures a Mirror.
	MirrorOption func(*Mirror)
)

// DefaultExcludes returns the Python and VCS artifacts skipped by default.
func DefaultExcludes() Excludes {
	return Excludes{
		Dirs:  []string{"__pycache__", ".git", ".uv", ".venv"},
		Files: []string{"*.pyc"},
	}
}

func (e Excludes) matchDir(name string) bool {
	return slices.Contains(e.Dirs, name)
}

func (e Excludes) matchFile(name string) bool {
	for _, pattern := range e.Files {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// WithMirrorRunner sets the runner used for rsync and robocopy.
func WithMirrorRunner(r toolexec.Runner) MirrorOption {
	return func(m *Mirror) { m.runner = r }
}

// WithStrategy sets the mirror strategy.
func WithStrategy(s MirrorStrategy) MirrorOption {
	return func(m *Mirror) { m.strategy = s }
}

// WithExcludes replaces the default excludes.
func WithExcludes(e Excludes) MirrorOption {
	return func(m *Mirror) { m.excludes = e }
}

// WithTools sets the rsync and robocopy executables. Empty values keep the
// defaults.
func WithTools(rsync, robocopy string) MirrorOption {
	return func(m *Mirror) {
		if rsync != "" {
			m.rsync = rsync
		}
		if robocopy != "" {
			m.robocopy = robocopy
		}
	}
}

// WithPlatform overrides the GOOS used to pick the auto strategy.
func WithPlatform(goos string) MirrorOption {
	return func(m *Mirror) { m.goos = goos }
}

// WithLookPath overrides the PATH lookup used by the auto strategy.
func WithLookPath(f func(string) (string, error)) MirrorOption {
	return func(m *Mirror) { m.lookPath = f }
}

// WithMirrorLogger sets the logger.
func WithMirrorLogger(l *slog.Logger) MirrorOption {
	return func(m *Mirror) { m.logger = l }
}

// NewMirror creates a Mirror targeting layout.ServerDir().
func NewMirror(layout Layout, opts ...MirrorOption) *Mirror {
	m := &Mirror{
		layout:   layout,
		strategy: StrategyAuto,
		excludes: DefaultExcludes(),
		rsync:    "rsync",
		robocopy: "robocopy",
		goos:     platform.Current(),
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.runner == nil {
		m.runner = toolexec.NewExecRunner()
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	return m
}

// LocalSource walks levels parents up from anchor and joins serverFolder.
// The result must be an existing directory.
func LocalSource(anchor string, levels int, serverFolder string) (string, error) {
	if anchor == "" {
		return "", fmt.Errorf("%w: no data directory configured", ErrLocalSourceNotFound)
	}
	if levels < 0 {
		return "", fmt.Errorf("anchor levels must not be negative, got %d", levels)
	}
	if serverFolder == "" {
		serverFolder = DefaultServerFolder
	}

	dir, err := filepath.Abs(anchor)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", anchor, err)
	}
	for range levels {
		dir = filepath.Dir(dir)
	}

	source := filepath.Join(dir, serverFolder)
	info, err := os.Stat(source)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrLocalSourceNotFound, source)
	}
	return source, nil
}

// ResolveStrategy turns StrategyAuto into a concrete strategy: robocopy on
// Windows, otherwise rsync when found on PATH and the native walker if not.
func ResolveStrategy(s MirrorStrategy, goos, rsync string, lookPath func(string) (string, error)) MirrorStrategy {
	if s != StrategyAuto {
		return s
	}
	if goos == platform.Windows {
		return StrategyRobocopy
	}
	if platform.IsPOSIX(goos) && lookPath != nil {
		if _, err := lookPath(rsync); err == nil {
			return StrategyRsync
		}
	}
	return StrategyNative
}

// Strategy returns the strategy Sync would use.
func (m *Mirror) Strategy() MirrorStrategy {
	return ResolveStrategy(m.strategy, m.goos, m.rsync, m.lookPath)
}

// Sync makes the installed server folder an exact copy of source, minus
// excluded artifacts. Failures are logged and carried in the Outcome.
func (m *Mirror) Sync(ctx context.Context, source string) Outcome {
	if err := m.sync(ctx, source); err != nil {
		m.logger.Error("local sync failed", "source", source, "destination", m.layout.ServerDir(), "error", err)
		return Outcome{Err: err}
	}
	out := Outcome{Action: ActionSynced}
	if v, err := InstalledVersion(m.layout); err == nil {
		out.InstalledVersion = v
	}
	return out
}

func (m *Mirror) sync(ctx context.Context, source string) error {
	if err := m.strategy.Validate(); err != nil {
		return err
	}
	info, err := os.Stat(source)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrLocalSourceNotFound, source)
	}

	dest := m.layout.ServerDir()
	m.logger.Debug("local sync paths",
		"source", source,
		"root", m.layout.Root,
		"destination", dest,
		"server_path", m.layout.ServerPath())

	if err := os.MkdirAll(m.layout.Root, 0o755); err != nil {
		return &MirrorError{Step: StepCreateRoot, Err: err}
	}

	strategy := m.Strategy()
	m.logger.Info("mirroring local server", "strategy", string(strategy), "source", source, "destination", dest)

	switch strategy {
	case StrategyRsync:
		err = m.mirrorRsync(ctx, source, dest)
	case StrategyRobocopy:
		err = m.mirrorRobocopy(ctx, source, dest)
	default:
		err = mirrorTree(ctx, source, dest, m.excludes)
	}
	if err != nil {
		return &MirrorError{Step: string(strategy), Err: err}
	}
	return nil
}

// RsyncArgs returns the rsync arguments mirroring src into dst.
func RsyncArgs(src, dst string, ex Excludes) []string {
	args := []string{"-a", "--delete"}
	for _, d := range ex.Dirs {
		args = append(args, "--exclude="+d)
	}
	for _, f := range ex.Files {
		args = append(args, "--exclude="+f)
	}
	return append(args, withTrailingSlash(src), withTrailingSlash(dst))
}

// RobocopyArgs returns the robocopy arguments mirroring src into dst.
func RobocopyArgs(src, dst string, ex Excludes) []string {
	args := []string{src, dst, "/MIR"}
	if len(ex.Dirs) > 0 {
		args = append(append(args, "/XD"), ex.Dirs...)
	}
	if len(ex.Files) > 0 {
		args = append(append(args, "/XF"), ex.Files...)
	}
	return args
}

func (m *Mirror) mirrorRsync(ctx context.Context, src, dst string) error {
	inv := toolexec.Invocation{Name: m.rsync, Args: RsyncArgs(src, dst, m.excludes)}
	_, err := toolexec.RunChecked(ctx, m.runner, inv, toolexec.ZeroOnly)
	return err
}

func (m *Mirror) mirrorRobocopy(ctx context.Context, src, dst string) error {
	inv := toolexec.Invocation{Name: m.robocopy, Args: RobocopyArgs(src, dst, m.excludes)}
	_, err := toolexec.RunChecked(ctx, m.runner, inv, robocopyAccept)
	return err
}

func withTrailingSlash(p string) string {
	return strings.TrimRight(p, "/") + "/"
}

// mirrorTree is the pure-Go mirror. It first sweeps dst of entries that are
// missing from src or changed kind, then copies src over dst. Excluded
// entries are skipped by both passes.
func mirrorTree(ctx context.Context, src, dst string, ex Excludes) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	if err := sweep(ctx, src, dst, ex); err != nil {
		return fmt.Errorf("sweep %s: %w", dst, err)
	}
	if err := copyTree(ctx, src, dst, ex); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return nil
}

func sweep(ctx context.Context, src, dst string, ex Excludes) error {
	return filepath.WalkDir(dst, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(dst, path)
		if err != nil || rel == "." {
			return err
		}

		if d.IsDir() && ex.matchDir(d.Name()) {
			return fs.SkipDir
		}
		if !d.IsDir() && ex.matchFile(d.Name()) {
			return nil
		}

		srcInfo, statErr := os.Lstat(filepath.Join(src, rel))
		keep := statErr == nil && srcInfo.IsDir() == d.IsDir()
		if keep {
			return nil
		}
		if err := os.RemoveAll(path); err != nil {
			return err
		}
		if d.IsDir() {
			return fs.SkipDir
		}
		return nil
	})
}

func copyTree(ctx context.Context, src, dst string, ex Excludes) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil || rel == "." {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			if ex.matchDir(d.Name()) {
				return fs.SkipDir
			}
			return os.MkdirAll(target, 0o755)
		case ex.matchFile(d.Name()):
			return nil
		case d.Type()&fs.ModeSymlink != 0:
			return copySymlink(path, target)
		case d.Type().IsRegular():
			return copyFile(path, target)
		default:
			return nil
		}
	})
}

func copySymlink(src, dst string) error {
	link, err := os.Readlink(src)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Symlink(link, dst)
}

func copyFile(src, dst string) (err error) {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if existing, lerr := os.Lstat(dst); lerr == nil && existing.Mode()&fs.ModeSymlink != 0 {
		if err := os.Remove(dst); err != nil {
			return err
		}
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	if err := out.Chmod(info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
