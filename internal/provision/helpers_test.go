// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cenkalti/backoff/v4"

	"github.com/moorestech/mcpsetup/internal/gitrepo"
	"github.com/moorestech/mcpsetup/internal/testutil"
	"github.com/moorestech/mcpsetup/internal/toolexec"
)

// fakeGit emulates the git subcommands the installer drives. Checkout and
// pull materialize a manifest so version detection sees the result.
type fakeGit struct {
	t               *testing.T
	layout          Layout
	remote          string
	checkoutVersion string
	pullVersion     string
	// fail maps a subcommand to the result it returns instead of succeeding.
	fail  map[string]toolexec.Result
	calls []string
}

func (f *fakeGit) Run(_ context.Context, inv toolexec.Invocation) (toolexec.Result, error) {
	f.calls = append(f.calls, strings.Join(inv.Args, " "))
	sub := inv.Args[0]
	if res, ok := f.fail[sub]; ok {
		return res, nil
	}

	switch sub {
	case "init":
		if err := os.MkdirAll(filepath.Join(inv.Dir, ".git"), 0o755); err != nil {
			f.t.Fatal(err)
		}
	case "remote":
		if inv.Args[1] == "get-url" {
			if f.remote == "" {
				return toolexec.Result{ExitCode: 2, Stderr: "error: No such remote"}, nil
			}
			return toolexec.Result{Stdout: f.remote + "\n"}, nil
		}
		f.remote = inv.Args[3]
	case "checkout":
		writeManifest(f.t, f.layout, f.checkoutVersion)
	case "pull":
		if f.pullVersion != "" {
			writeManifest(f.t, f.layout, f.pullVersion)
		}
	}
	return toolexec.Result{}, nil
}

// count returns how many calls started with the given subcommand.
func (f *fakeGit) count(sub string) int {
	n := 0
	for _, c := range f.calls {
		if c == sub || strings.HasPrefix(c, sub+" ") {
			n++
		}
	}
	return n
}

type latestFunc func(ctx context.Context) (string, error)

func (f latestFunc) LatestVersion(ctx context.Context) (string, error) { return f(ctx) }

func fixedLatest(v string) latestFunc {
	return func(context.Context) (string, error) { return v, nil }
}

func testLayout(t *testing.T) Layout {
	t.Helper()
	return Layout{Root: filepath.Join(t.TempDir(), DefaultRootFolder), ServerFolder: DefaultServerFolder}
}

func newTestInstaller(layout Layout, git *fakeGit, latest VersionSource, opts ...InstallerOption) *Installer {
	base := []InstallerOption{
		WithGit(gitrepo.NewWorktree(layout.Root, "git", git)),
		WithLatestVersionSource(latest),
		WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }),
	}
	return NewInstaller(layout, append(base, opts...)...)
}

func writeManifest(t *testing.T, layout Layout, version string) {
	t.Helper()
	testutil.WriteManifest(t, layout.ManifestPath(), version)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	testutil.MustWriteFile(t, path, content)
}
