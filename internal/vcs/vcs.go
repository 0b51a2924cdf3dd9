// Package vcs answers whether an in-place rewrite is safe: a file is only
// overwritten when the surrounding git worktree has no pending changes for it.
package vcs

import (
	"errors"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// ErrNotRepository is returned when the file is not inside a git repository.
var ErrNotRepository = errors.New("not inside a git repository")

// Clean reports whether the given file has no uncommitted changes in its
// enclosing git worktree. A file git does not track at all counts as dirty,
// since overwriting it would lose the only copy.
func Clean(path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}

	repo, err := git.PlainOpenWithOptions(filepath.Dir(abs), &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return false, ErrNotRepository
		}
		return false, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return false, err
	}

	rel, err := filepath.Rel(worktree.Filesystem.Root(), abs)
	if err != nil {
		return false, err
	}
	rel = filepath.ToSlash(rel)

	status, err := worktree.Status()
	if err != nil {
		return false, err
	}

	// Absent from the status map means unmodified and tracked.
	fs, ok := status[rel]
	if !ok {
		return true, nil
	}
	return fs.Worktree == git.Unmodified && fs.Staging == git.Unmodified, nil
}
