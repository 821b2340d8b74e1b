// SPDX-License-Identifier: MPL-2.0

package gitrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/moorestech/mcpsetup/internal/toolexec"
)

// DefaultRemote is the remote name registered by SetRemote callers.
const DefaultRemote = "origin"

type (
	// Worktree runs git commands against a single working-copy directory.
	Worktree struct {
		// Dir is the working-copy root (the directory containing .git).
		Dir string
		// Git is the git executable; empty means "git".
		Git string
		// Runner executes the commands.
		Runner toolexec.Runner
	}
)

// NewWorktree creates a Worktree for dir using the given runner.
func NewWorktree(dir, gitBinary string, runner toolexec.Runner) *Worktree {
	return &Worktree{Dir: dir, Git: gitBinary, Runner: runner}
}

// Init creates (or reinitializes) the repository in Dir.
func (w *Worktree) Init(ctx context.Context) error {
	return w.run(ctx, "init")
}

// SetRemote points name at url, adding the remote when it does not exist yet
// and rewriting its URL otherwise.
func (w *Worktree) SetRemote(ctx context.Context, name, url string) error {
	res, err := w.Runner.Run(ctx, w.invocation("remote", "get-url", name))
	if err != nil {
		return err
	}
	if res.ExitCode == 0 {
		if strings.TrimSpace(res.Stdout) == url {
			return nil
		}
		return w.run(ctx, "remote", "set-url", name, url)
	}
	return w.run(ctx, "remote", "add", name, url)
}

// EnableSparseCheckout restricts the materialized tree to the given
// directories. Each entry is written as a directory pattern ("dir/").
func (w *Worktree) EnableSparseCheckout(ctx context.Context, dirs ...string) error {
	if len(dirs) == 0 {
		return fmt.Errorf("sparse checkout needs at least one path")
	}
	if err := w.run(ctx, "config", "core.sparseCheckout", "true"); err != nil {
		return err
	}

	infoDir := filepath.Join(w.Dir, ".git", "info")
	if err := os.MkdirAll(infoDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", infoDir, err)
	}

	var patterns strings.Builder
	for _, d := range dirs {
		patterns.WriteString(strings.TrimSuffix(filepath.ToSlash(d), "/"))
		patterns.WriteString("/\n")
	}
	sparseFile := filepath.Join(infoDir, "sparse-checkout")
	if err := os.WriteFile(sparseFile, []byte(patterns.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", sparseFile, err)
	}
	return nil
}

// FetchShallow fetches branch from remote with the given history depth.
func (w *Worktree) FetchShallow(ctx context.Context, remote, branch string, depth int) error {
	return w.run(ctx, "fetch", "--depth="+strconv.Itoa(depth), remote, branch)
}

// Checkout switches the working copy to branch.
func (w *Worktree) Checkout(ctx context.Context, branch string) error {
	return w.run(ctx, "checkout", branch)
}

// Pull merges branch from remote into the current branch.
func (w *Worktree) Pull(ctx context.Context, remote, branch string) error {
	return w.run(ctx, "pull", remote, branch)
}

// ResetHard discards local modifications to tracked files.
func (w *Worktree) ResetHard(ctx context.Context) error {
	return w.run(ctx, "reset", "--hard", "HEAD")
}

func (w *Worktree) run(ctx context.Context, args ...string) error {
	_, err := toolexec.RunChecked(ctx, w.Runner, w.invocation(args...), toolexec.ZeroOnly)
	return err
}

func (w *Worktree) invocation(args ...string) toolexec.Invocation {
	git := w.Git
	if git == "" {
		git = "git"
	}
	return toolexec.Invocation{Name: git, Args: args, Dir: w.Dir}
}
