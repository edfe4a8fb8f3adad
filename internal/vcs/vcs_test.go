package vcs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkfile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestGitBranch(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, ".git", "HEAD"), "ref: refs/heads/feature/titles\n")
	nested := filepath.Join(root, "src", "app")
	require.NoError(t, os.MkdirAll(nested, 0755))

	branch, ok := GitBranch(nested)
	require.True(t, ok)
	assert.Equal(t, "feature/titles", branch)
}

func TestGitBranch_Detached(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, ".git", "HEAD"), "3f2a9c1d0e4b5a6978877665544332211aabbccd\n")

	branch, ok := GitBranch(root)
	require.True(t, ok)
	assert.Equal(t, "3f2a9c1", branch)
}

func TestGitBranch_Worktree(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, "main", ".git", "worktrees", "wt", "HEAD"), "ref: refs/heads/wt-branch\n")
	mkfile(t, filepath.Join(root, "wt", ".git"), "gitdir: ../main/.git/worktrees/wt\n")

	branch, ok := GitBranch(filepath.Join(root, "wt"))
	require.True(t, ok)
	assert.Equal(t, "wt-branch", branch)
}

func TestHgBranch(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".hg"), 0755))

	branch, ok := HgBranch(root)
	require.True(t, ok)
	assert.Equal(t, "default", branch)

	mkfile(t, filepath.Join(root, ".hg", "branch"), "stable\n")
	branch, ok = HgBranch(root)
	require.True(t, ok)
	assert.Equal(t, "stable", branch)
}

func TestBranch_PrefersGit(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, ".git", "HEAD"), "ref: refs/heads/main\n")
	mkfile(t, filepath.Join(root, ".hg", "branch"), "stable\n")

	branch, ok := Branch(root)
	require.True(t, ok)
	assert.Equal(t, "main", branch)
}

func TestSVNURL_NotAWorkingCopy(t *testing.T) {
	root := t.TempDir()
	if _, ok := findUp(root, ".svn"); ok {
		t.Skip("temp dir is inside an svn working copy")
	}
	_, ok := SVNURL(context.Background(), root)
	assert.False(t, ok)
}
