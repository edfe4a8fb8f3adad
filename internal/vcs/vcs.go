// Package vcs reads version-control facts (current branch, repository URL)
// for a directory. Git and Mercurial are read straight from their metadata
// directories; Subversion needs the svn client.
package vcs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const svnTimeout = 2 * time.Second

// findUp walks from dir towards the root and returns the first path
// dir/.../name that exists.
func findUp(dir, name string) (string, bool) {
	dir = filepath.Clean(dir)
	for {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// GitBranch returns the checked-out branch of the git repository containing
// dir. A detached HEAD yields the abbreviated commit id.
func GitBranch(dir string) (string, bool) {
	gitPath, ok := findUp(dir, ".git")
	if !ok {
		return "", false
	}
	gitDir, ok := resolveGitDir(gitPath)
	if !ok {
		return "", false
	}

	data, err := os.ReadFile(filepath.Join(gitDir, "HEAD"))
	if err != nil {
		return "", false
	}
	head := strings.TrimSpace(string(data))
	if ref, found := strings.CutPrefix(head, "ref:"); found {
		ref = strings.TrimSpace(ref)
		return strings.TrimPrefix(ref, "refs/heads/"), true
	}
	if len(head) >= 7 {
		return head[:7], true
	}
	return "", false
}

// resolveGitDir follows the "gitdir: <path>" indirection used by worktrees
// and submodules.
func resolveGitDir(gitPath string) (string, bool) {
	info, err := os.Stat(gitPath)
	if err != nil {
		return "", false
	}
	if info.IsDir() {
		return gitPath, true
	}
	data, err := os.ReadFile(gitPath)
	if err != nil {
		return "", false
	}
	target, found := strings.CutPrefix(strings.TrimSpace(string(data)), "gitdir:")
	if !found {
		return "", false
	}
	target = strings.TrimSpace(target)
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(gitPath), target)
	}
	return target, true
}

// HgBranch returns the current Mercurial branch of the repository containing dir.
func HgBranch(dir string) (string, bool) {
	hgDir, ok := findUp(dir, ".hg")
	if !ok {
		return "", false
	}
	data, err := os.ReadFile(filepath.Join(hgDir, "branch"))
	if err != nil {
		// hg only writes .hg/branch once a named branch is used
		return "default", true
	}
	branch := strings.TrimSpace(string(data))
	if branch == "" {
		return "default", true
	}
	return branch, true
}

// SVNURL returns the repository-relative URL ("^/trunk") of the Subversion
// working copy containing dir.
func SVNURL(ctx context.Context, dir string) (string, bool) {
	if _, ok := findUp(dir, ".svn"); !ok {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, svnTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "svn", "info", "--show-item", "relative-url")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", false
	}
	url := strings.TrimSpace(string(out))
	return url, url != ""
}

// Branch returns the branch of whichever VCS manages dir (git, then hg).
func Branch(dir string) (string, bool) {
	if b, ok := GitBranch(dir); ok {
		return b, true
	}
	return HgBranch(dir)
}
