// SPDX-License-Identifier: MPL-2.0

package gitrepo

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrNoCommits is returned by Head when the repository has no checked-out commit.
var ErrNoCommits = errors.New("repository has no commits")

// HeadInfo describes the commit the working copy is on.
type HeadInfo struct {
	// Branch is the short branch name, or empty for a detached HEAD.
	Branch string
	// Commit is the full hex commit hash.
	Commit string
}

// ShortCommit returns the first seven characters of the commit hash.
func (h HeadInfo) ShortCommit() string {
	if len(h.Commit) > 7 {
		return h.Commit[:7]
	}
	return h.Commit
}

// IsRepository reports whether dir holds a git repository.
func IsRepository(dir string) bool {
	_, err := git.PlainOpen(dir)
	return err == nil
}

// Head reads HEAD of the repository at dir without invoking git.
func Head(dir string) (HeadInfo, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return HeadInfo{}, fmt.Errorf("open repository %s: %w", dir, err)
	}

	ref, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return HeadInfo{}, ErrNoCommits
		}
		return HeadInfo{}, fmt.Errorf("read HEAD: %w", err)
	}

	info := HeadInfo{Commit: ref.Hash().String()}
	if ref.Name().IsBranch() {
		info.Branch = ref.Name().Short()
	}
	return info, nil
}
