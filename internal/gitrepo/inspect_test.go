// SPDX-License-Identifier: MPL-2.0

package gitrepo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func TestHead_ReadsCommittedRepository(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte("version = \"0.4.1\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := wt.Add("pyproject.toml"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Unix(1700000000, 0)},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	ref, err := repo.Head()
	if err != nil {
		t.Fatalf("repo.Head: %v", err)
	}

	if !IsRepository(dir) {
		t.Error("IsRepository() = false for an initialized repository")
	}

	info, err := Head(dir)
	if err != nil {
		t.Fatalf("Head() error = %v", err)
	}
	if info.Commit != hash.String() {
		t.Errorf("Commit = %s, want %s", info.Commit, hash)
	}
	if info.Branch != ref.Name().Short() {
		t.Errorf("Branch = %q, want %q", info.Branch, ref.Name().Short())
	}
	if len(info.ShortCommit()) != 7 {
		t.Errorf("ShortCommit() = %q, want 7 characters", info.ShortCommit())
	}
}

func TestHead_EmptyRepository(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := git.PlainInit(dir, false); err != nil {
		t.Fatalf("PlainInit: %v", err)
	}

	if _, err := Head(dir); !errors.Is(err, ErrNoCommits) {
		t.Errorf("Head() error = %v, want ErrNoCommits", err)
	}
}

func TestHead_NotARepository(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if IsRepository(dir) {
		t.Error("IsRepository() = true for a plain directory")
	}
	if _, err := Head(dir); err == nil {
		t.Error("Head() error = nil for a plain directory")
	}
}
