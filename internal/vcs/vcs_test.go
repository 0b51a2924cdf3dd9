package vcs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func commitAll(t *testing.T, worktree *git.Worktree, msg string) {
	t.Helper()
	_, err := worktree.Add(".")
	require.NoError(t, err)
	_, err = worktree.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
}

func TestClean(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	worktree, err := repo.Worktree()
	require.NoError(t, err)

	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0644))

	// Untracked files count as dirty.
	clean, err := Clean(path)
	require.NoError(t, err)
	assert.False(t, clean)

	commitAll(t, worktree, "initial")

	clean, err = Clean(path)
	require.NoError(t, err)
	assert.True(t, clean)

	// Modify without committing.
	require.NoError(t, os.WriteFile(path, []byte("package main\n\nvar x = 1\n"), 0644))

	clean, err = Clean(path)
	require.NoError(t, err)
	assert.False(t, clean)

	commitAll(t, worktree, "change")

	clean, err = Clean(path)
	require.NoError(t, err)
	assert.True(t, clean)
}

func TestCleanFindsRepositoryFromSubdirectory(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	worktree, err := repo.Worktree()
	require.NoError(t, err)

	sub := filepath.Join(dir, "pkg", "deep")
	require.NoError(t, os.MkdirAll(sub, 0755))
	path := filepath.Join(sub, "deep.go")
	require.NoError(t, os.WriteFile(path, []byte("package deep\n"), 0644))
	commitAll(t, worktree, "initial")

	clean, err := Clean(path)
	require.NoError(t, err)
	assert.True(t, clean)
}

func TestCleanOutsideRepository(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0644))

	_, err := Clean(path)
	assert.ErrorIs(t, err, ErrNotRepository)
}
