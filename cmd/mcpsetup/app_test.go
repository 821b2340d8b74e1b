// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/moorestech/mcpsetup/internal/config"
	"github.com/moorestech/mcpsetup/internal/provision"
	"github.com/moorestech/mcpsetup/internal/testutil"
	"github.com/moorestech/mcpsetup/internal/toolexec"
)

// failingConfig is a ConfigProvider whose Load always fails.
type failingConfig struct{ err error }

func (f failingConfig) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	return nil, f.err
}

// fakeGit writes a manifest on checkout and pull so the CLI sees a
// finished install or update.
type fakeGit struct {
	t           *testing.T
	root        string
	checkout    string
	pull        string
	calls       []string
	remoteAdded bool
}

func (f *fakeGit) Run(_ context.Context, inv toolexec.Invocation) (toolexec.Result, error) {
	f.calls = append(f.calls, strings.Join(inv.Args, " "))
	switch inv.Args[0] {
	case "remote":
		if inv.Args[1] == "get-url" && !f.remoteAdded {
			return toolexec.Result{ExitCode: 2}, nil
		}
		f.remoteAdded = true
	case "checkout":
		writeManifest(f.t, f.root, f.checkout)
	case "pull":
		if f.pull != "" {
			writeManifest(f.t, f.root, f.pull)
		}
	}
	return toolexec.Result{}, nil
}

func writeManifest(t *testing.T, root, version string) {
	t.Helper()
	testutil.WriteManifest(t, filepath.Join(root, provision.DefaultServerFolder, provision.SourceDir, provision.ManifestFile), version)
}

// manifestServer serves an upstream manifest advertising version.
func manifestServer(t *testing.T, version string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("[project]\nversion = \"" + version + "\"\n"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

type harness struct {
	app    *App
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T, cfg *config.Config, runner toolexec.Runner) *harness {
	t.Helper()
	h := &harness{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	h.app = NewApp(Dependencies{
		Config: config.Static(cfg),
		Runner: runner,
		Stdout: h.stdout,
		Stderr: h.stderr,
	})
	return h
}

func (h *harness) run(args ...string) error {
	h.stdout.Reset()
	h.stderr.Reset()
	root := NewRootCommand(h.app)
	root.SetArgs(args)
	root.SetOut(h.stdout)
	root.SetErr(h.stderr)
	return root.ExecuteContext(context.Background())
}

func testConfig(manifestURL string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Source.ManifestURL = manifestURL
	cfg.Remote.Retries = 0
	return cfg
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error is not an ExitError: %v", err)
	}
	return exitErr.Code
}

func TestEnsureInstallsThenIsIdempotent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	srv := manifestServer(t, "1.0.0")
	git := &fakeGit{t: t, root: root, checkout: "1.0.0"}
	h := newHarness(t, testConfig(srv.URL), git)

	if err := h.run("ensure", "--root", root); err != nil {
		t.Fatalf("first ensure: %v\n%s", err, h.stderr)
	}
	if !strings.Contains(h.stdout.String(), "Installed server 1.0.0") {
		t.Errorf("stdout = %q, want install summary", h.stdout)
	}

	if err := h.run("ensure", "--root", root); err != nil {
		t.Fatalf("second ensure: %v\n%s", err, h.stderr)
	}
	if !strings.Contains(h.stdout.String(), "Server is up to date (1.0.0)") {
		t.Errorf("stdout = %q, want up-to-date summary", h.stdout)
	}

	var checkouts, pulls int
	for _, c := range git.calls {
		switch {
		case strings.HasPrefix(c, "checkout"):
			checkouts++
		case strings.HasPrefix(c, "pull"):
			pulls++
		}
	}
	if checkouts != 1 || pulls != 0 {
		t.Errorf("checkouts = %d, pulls = %d; want 1 and 0", checkouts, pulls)
	}
}

func TestEnsureUpdatesWhenUpstreamIsNewer(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeManifest(t, root, "1.0.0")
	srv := manifestServer(t, "1.1.0")
	h := newHarness(t, testConfig(srv.URL), &fakeGit{t: t, root: root, pull: "1.1.0"})

	if err := h.run("ensure", "--root", root); err != nil {
		t.Fatalf("ensure: %v\n%s", err, h.stderr)
	}
	if !strings.Contains(h.stdout.String(), "Updated server to 1.1.0") {
		t.Errorf("stdout = %q, want update summary", h.stdout)
	}
}

func TestEnsureCorruptManifestSuggestsForceUpdate(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeManifest(t, root, "")
	srv := manifestServer(t, "1.1.0")
	h := newHarness(t, testConfig(srv.URL), &fakeGit{t: t, root: root})

	err := h.run("ensure", "--root", root)
	if code := exitCode(t, err); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(h.stderr.String(), "mcpsetup force-update") {
		t.Errorf("stderr = %q, want force-update suggestion", h.stderr)
	}
}

func TestForceUpdateRepairsCorruptManifest(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeManifest(t, root, "")
	h := newHarness(t, testConfig("http://127.0.0.1:1/unused"), &fakeGit{t: t, root: root, pull: "1.2.0"})

	if err := h.run("force-update", "--root", root); err != nil {
		t.Fatalf("force-update: %v\n%s", err, h.stderr)
	}
	if !strings.Contains(h.stdout.String(), "Updated server to 1.2.0") {
		t.Errorf("stdout = %q, want update summary", h.stdout)
	}
}

func TestPathKinds(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	serverDir := filepath.Join(root, provision.DefaultServerFolder)

	tests := []struct {
		args []string
		want string
	}{
		{nil, filepath.Join(serverDir, provision.SourceDir)},
		{[]string{"server"}, filepath.Join(serverDir, provision.SourceDir)},
		{[]string{"dir"}, serverDir},
		{[]string{"root"}, root},
		{[]string{"manifest"}, filepath.Join(serverDir, provision.SourceDir, provision.ManifestFile)},
	}

	for _, tt := range tests {
		t.Run(strings.Join(append([]string{"path"}, tt.args...), " "), func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, config.DefaultConfig(), &fakeGit{t: t, root: root})
			args := append(append([]string{"path"}, tt.args...), "--root", root)
			if err := h.run(args...); err != nil {
				t.Fatalf("path: %v", err)
			}
			if got := strings.TrimSpace(h.stdout.String()); got != tt.want {
				t.Errorf("path = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPathRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	h := newHarness(t, config.DefaultConfig(), &fakeGit{t: t})
	if err := h.run("path", "bogus", "--root", t.TempDir()); err == nil {
		t.Fatal("path bogus succeeded, want error")
	}
}

func TestVersionInstalled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	h := newHarness(t, config.DefaultConfig(), &fakeGit{t: t, root: root})

	err := h.run("version", "--installed", "--root", root)
	if code := exitCode(t, err); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(h.stderr.String(), "not installed") {
		t.Errorf("stderr = %q, want not-installed error", h.stderr)
	}

	if err := h.run("version", "--root", root); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(h.stdout.String(), "server not installed") {
		t.Errorf("stdout = %q, want not-installed line", h.stdout)
	}

	writeManifest(t, root, "3.1.4")
	if err := h.run("version", "--installed", "--root", root); err != nil {
		t.Fatalf("version --installed: %v", err)
	}
	if got := strings.TrimSpace(h.stdout.String()); got != "3.1.4" {
		t.Errorf("installed version = %q, want 3.1.4", got)
	}
}

func TestVersionLatest(t *testing.T) {
	t.Parallel()

	srv := manifestServer(t, "9.9.9")
	h := newHarness(t, testConfig(srv.URL), &fakeGit{t: t})
	if err := h.run("version", "--latest", "--root", t.TempDir()); err != nil {
		t.Fatalf("version --latest: %v", err)
	}
	if got := strings.TrimSpace(h.stdout.String()); got != "9.9.9" {
		t.Errorf("latest version = %q, want 9.9.9", got)
	}
}

func TestStatusReportsAvailableUpdate(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeManifest(t, root, "1.0.0")
	srv := manifestServer(t, "1.1.0")
	h := newHarness(t, testConfig(srv.URL), &fakeGit{t: t, root: root})

	if err := h.run("status", "--check-remote", "--root", root); err != nil {
		t.Fatalf("status: %v", err)
	}
	out := h.stdout.String()
	for _, want := range []string{"Server Status", "1.0.0", "not a git repository", "1.1.0 (update available)"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestSyncLocalNative(t *testing.T) {
	t.Parallel()

	work := t.TempDir()
	src := filepath.Join(work, "checkout", provision.DefaultServerFolder)
	writeManifest(t, filepath.Join(work, "checkout"), "2.0.0")
	root := filepath.Join(work, "install")

	h := newHarness(t, config.DefaultConfig(), &fakeGit{t: t})
	if err := h.run("sync-local", "--source", src, "--strategy", "native", "--root", root); err != nil {
		t.Fatalf("sync-local: %v\n%s", err, h.stderr)
	}
	if !strings.Contains(h.stdout.String(), "Synced local server 2.0.0") {
		t.Errorf("stdout = %q, want sync summary", h.stdout)
	}
}

func TestSyncLocalFromDataDir(t *testing.T) {
	t.Parallel()

	work := t.TempDir()
	writeManifest(t, work, "2.1.0")
	dataDir := filepath.Join(work, "Project", "Assets")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		t.Fatal(err)
	}

	h := newHarness(t, config.DefaultConfig(), &fakeGit{t: t})
	root := filepath.Join(work, "install")
	if err := h.run("sync-local", "--data-dir", dataDir, "--strategy", "native", "--root", root); err != nil {
		t.Fatalf("sync-local: %v\n%s", err, h.stderr)
	}
	if _, err := os.Stat(filepath.Join(root, provision.DefaultServerFolder, provision.SourceDir, provision.ManifestFile)); err != nil {
		t.Errorf("mirrored manifest missing: %v", err)
	}
}

func TestSyncLocalWithoutSource(t *testing.T) {
	t.Parallel()

	h := newHarness(t, config.DefaultConfig(), &fakeGit{t: t})
	err := h.run("sync-local", "--root", t.TempDir())
	if code := exitCode(t, err); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(h.stderr.String(), "--data-dir") {
		t.Errorf("stderr = %q, want data-dir suggestion", h.stderr)
	}
}

func TestSyncLocalRejectsUnknownStrategy(t *testing.T) {
	t.Parallel()

	h := newHarness(t, config.DefaultConfig(), &fakeGit{t: t})
	err := h.run("sync-local", "--source", t.TempDir(), "--strategy", "scp", "--root", t.TempDir())
	if code := exitCode(t, err); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(h.stderr.String(), `"scp"`) {
		t.Errorf("stderr = %q, want the rejected strategy", h.stderr)
	}
}

func TestConfigLoadFailure(t *testing.T) {
	t.Parallel()

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	app := NewApp(Dependencies{
		Config: failingConfig{err: errors.New("boom")},
		Runner: &fakeGit{t: t},
		Stdout: stdout,
		Stderr: stderr,
	})
	root := NewRootCommand(app)
	root.SetArgs([]string{"ensure"})
	err := root.ExecuteContext(context.Background())

	if code := exitCode(t, err); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "config dump") {
		t.Errorf("stderr = %q, want config dump suggestion", stderr)
	}
}
