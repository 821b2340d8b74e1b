// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/moorestech/mcpsetup/pkg/platform"
)

const (
	// DefaultRootFolder is the directory name of the installation root.
	DefaultRootFolder = "mooresUnityMCP"
	// DefaultServerFolder is the server directory inside the root and the
	// only path materialized by the sparse checkout.
	DefaultServerFolder = "UnityMcpServer"
	// SourceDir holds the server sources inside the server folder.
	SourceDir = "src"
	// ManifestFile is the server manifest carrying the version.
	ManifestFile = "pyproject.toml"

	defaultSystemBinDir = "/usr/local/bin"
)

type (
	// Environment is the slice of the host that root resolution depends on.
	Environment struct {
		GOOS    string
		HomeDir func() (string, error)
		Getenv  func(string) string
		// SystemBinDir is the preferred macOS parent. Empty means /usr/local/bin.
		SystemBinDir string
	}

	// LayoutOptions override parts of the resolved layout.
	LayoutOptions struct {
		// RootOverride replaces the per-OS root entirely when set.
		RootOverride string
		// RootFolder names the root directory. Empty means DefaultRootFolder.
		RootFolder string
		// ServerFolder names the server directory. Empty means DefaultServerFolder.
		ServerFolder string
	}

	// Layout is the on-disk shape of an installation. It is resolved once
	// and passed by value; none of its methods touch the filesystem.
	Layout struct {
		Root         string
		ServerFolder string
	}
)

// HostEnvironment describes the running process.
func HostEnvironment() Environment {
	return Environment{
		GOOS:    platform.Current(),
		HomeDir: os.UserHomeDir,
		Getenv:  os.Getenv,
	}
}

// ResolveRoot returns the per-OS installation root for rootFolder. It never
// creates the directory.
func ResolveRoot(env Environment, rootFolder string) (string, error) {
	if rootFolder == "" {
		rootFolder = DefaultRootFolder
	}

	if !platform.IsSupported(env.GOOS) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedPlatform, env.GOOS)
	}

	getenv := env.Getenv
	if getenv == nil {
		getenv = func(string) string { return "" }
	}

	switch env.GOOS {
	case platform.Windows:
		if local := getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, "Programs", rootFolder), nil
		}
		home, err := homeDir(env)
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "AppData", "Local", "Programs", rootFolder), nil

	case platform.Linux:
		home, err := homeDir(env)
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "bin", rootFolder), nil

	case platform.Darwin:
		binDir := env.SystemBinDir
		if binDir == "" {
			binDir = defaultSystemBinDir
		}
		if isWritableDir(binDir) {
			return filepath.Join(binDir, rootFolder), nil
		}
		home, err := homeDir(env)
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Applications", rootFolder), nil

	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedPlatform, env.GOOS)
	}
}

// NewLayout resolves the installation layout, honoring opts.RootOverride
// before falling back to ResolveRoot.
func NewLayout(env Environment, opts LayoutOptions) (Layout, error) {
	serverFolder := opts.ServerFolder
	if serverFolder == "" {
		serverFolder = DefaultServerFolder
	}

	if opts.RootOverride != "" {
		root, err := filepath.Abs(opts.RootOverride)
		if err != nil {
			return Layout{}, fmt.Errorf("resolve root override %q: %w", opts.RootOverride, err)
		}
		return Layout{Root: root, ServerFolder: serverFolder}, nil
	}

	root, err := ResolveRoot(env, opts.RootFolder)
	if err != nil {
		return Layout{}, err
	}
	return Layout{Root: root, ServerFolder: serverFolder}, nil
}

// ServerDir returns <root>/<server-folder>.
func (l Layout) ServerDir() string {
	return filepath.Join(l.Root, l.ServerFolder)
}

// ServerPath returns the directory the bridge launches the server from.
func (l Layout) ServerPath() string {
	return filepath.Join(l.ServerDir(), SourceDir)
}

// ManifestPath returns the location of the installed manifest.
func (l Layout) ManifestPath() string {
	return filepath.Join(l.ServerPath(), ManifestFile)
}

func homeDir(env Environment) (string, error) {
	if env.HomeDir == nil {
		return "", fmt.Errorf("home directory lookup not configured")
	}
	home, err := env.HomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return home, nil
}

// isWritableDir proves writability by creating and removing a probe file;
// permission bits alone are not trusted.
func isWritableDir(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	probe, err := os.CreateTemp(dir, ".mcpsetup-probe-*")
	if err != nil {
		return false
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return true
}
