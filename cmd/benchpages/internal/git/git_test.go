// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zchee/benchpages/benchpub"
)

// setupGit isolates git from the user's configuration.
func setupGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found")
	}
	t.Setenv("GIT_CONFIG_GLOBAL", filepath.Join(t.TempDir(), "gitconfig"))
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_AUTHOR_NAME", "bench-bot")
	t.Setenv("GIT_AUTHOR_EMAIL", "bench-bot@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "bench-bot")
	t.Setenv("GIT_COMMITTER_EMAIL", "bench-bot@example.com")
}

func gitCmd(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
	return strings.TrimSpace(string(out))
}

func writeFile(t *testing.T, name, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
	require.NoError(t, os.WriteFile(name, []byte(data), 0o644))
}

// newRemote returns a bare repository holding a gh-pages branch.
func newRemote(t *testing.T) string {
	t.Helper()
	remote := filepath.Join(t.TempDir(), "remote.git")
	gitCmd(t, "", "init", "--bare", remote)

	seed := t.TempDir()
	gitCmd(t, seed, "init")
	gitCmd(t, seed, "checkout", "-b", "gh-pages")
	writeFile(t, filepath.Join(seed, "bench", "index.md"), "# Benchmarks\n\n")
	gitCmd(t, seed, "add", ".")
	gitCmd(t, seed, "commit", "-m", "init")
	gitCmd(t, seed, "remote", "add", "origin", remote)
	gitCmd(t, seed, "push", "origin", "gh-pages")
	return remote
}

func newClone(t *testing.T, remote string) *Repo {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "work")
	gitCmd(t, "", "clone", remote, dir)
	return &Repo{Dir: dir}
}

func TestSwitchAndCommit(t *testing.T) {
	setupGit(t)
	ctx := context.Background()
	repo := newClone(t, newRemote(t))

	require.NoError(t, repo.Switch(ctx, "gh-pages", true))
	branch, err := repo.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "gh-pages", branch)

	require.NoError(t, repo.CreateBranch(ctx, "_branch_0123456789"))
	branch, err = repo.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "_branch_0123456789", branch)

	writeFile(t, filepath.Join(repo.Dir, "bench", "7", "criterion", "x.html"), "x")
	require.NoError(t, repo.Commit(ctx, []string{"bench"}, benchpub.CommitMessage))
	assert.Equal(t, benchpub.CommitMessage, gitCmd(t, repo.Dir, "log", "-1", "--format=%s"))

	require.NoError(t, repo.Switch(ctx, "gh-pages", false))
	assert.NoFileExists(t, filepath.Join(repo.Dir, "bench", "7", "criterion", "x.html"))
}

func TestCommitNothing(t *testing.T) {
	setupGit(t)
	ctx := context.Background()
	repo := newClone(t, newRemote(t))
	require.NoError(t, repo.Switch(ctx, "gh-pages", true))

	err := repo.Commit(ctx, []string{"bench"}, "empty")
	var gerr *Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "commit", gerr.Args[0])
}

func TestSwitchMissing(t *testing.T) {
	setupGit(t)
	repo := newClone(t, newRemote(t))

	err := repo.Switch(context.Background(), "no-such-branch", true)
	var gerr *Error
	require.True(t, errors.As(err, &gerr))
	assert.Contains(t, err.Error(), "git fetch origin no-such-branch")
	assert.NotEmpty(t, gerr.Stderr)
}

func TestPublishRace(t *testing.T) {
	setupGit(t)
	ctx := context.Background()
	remote := newRemote(t)

	// Another run pushes to gh-pages first.
	other := newClone(t, remote)
	require.NoError(t, other.Switch(ctx, "gh-pages", true))
	writeFile(t, filepath.Join(other.Dir, "bench", "1", "a.html"), "a")
	require.NoError(t, other.Commit(ctx, []string{"bench"}, benchpub.CommitMessage))
	require.NoError(t, other.Push(ctx, "gh-pages"))

	repo := newClone(t, remote)
	require.NoError(t, repo.Switch(ctx, "gh-pages", false))
	gitCmd(t, repo.Dir, "reset", "--hard", "HEAD~1")
	writeFile(t, filepath.Join(repo.Dir, "bench", "2", "b.html"), "b")

	c := &benchpub.Coordinator{VCS: repo, Names: benchpub.NewNameGenerator(1)}
	res, err := c.Publish(ctx, []string{"bench"}, "gh-pages", "gh-pages_")
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Regexp(t, regexp.MustCompile(`^gh-pages_[0-9]{10}$`), res.Branch)

	refs := gitCmd(t, remote, "for-each-ref", "--format=%(refname:short)", "refs/heads")
	assert.ElementsMatch(t, []string{"gh-pages", res.Branch}, strings.Split(refs, "\n"))

	// gh-pages still holds the other run's commit.
	assert.Equal(t,
		gitCmd(t, other.Dir, "rev-parse", "HEAD"),
		gitCmd(t, remote, "rev-parse", "gh-pages"))
}

func TestConfigure(t *testing.T) {
	setupGit(t)
	ctx := context.Background()
	require.NoError(t, Configure(ctx, "/work/repo", "bench-bot@github.com", "bench-bot", nil))

	repo := &Repo{}
	out, err := repo.run(ctx, "config", "--global", "user.name")
	require.NoError(t, err)
	assert.Equal(t, "bench-bot", out)
	out, err = repo.run(ctx, "config", "--global", "--get-all", "safe.directory")
	require.NoError(t, err)
	assert.Equal(t, "/work/repo", out)
}

func TestConfigureFails(t *testing.T) {
	setupGit(t)
	t.Setenv("GIT_CONFIG_GLOBAL", filepath.Join(t.TempDir(), "missing", "gitconfig"))

	err := Configure(context.Background(), "/work/repo", "bench-bot@github.com", "bench-bot", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setting safe.directory")
	var gerr *Error
	require.True(t, errors.As(err, &gerr), "%v", err)
	assert.Equal(t, "config", gerr.Args[0])
}

func TestRequireBranch(t *testing.T) {
	setupGit(t)
	ctx := context.Background()
	repo := newClone(t, newRemote(t))

	require.NoError(t, repo.Switch(ctx, "gh-pages", true))
	require.NoError(t, repo.RequireBranch(ctx, "gh-pages"))

	require.NoError(t, repo.CreateBranch(ctx, "work"))
	err := repo.RequireBranch(ctx, "gh-pages")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "on work")
}
