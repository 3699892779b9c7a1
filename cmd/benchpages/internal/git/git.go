// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package git drives the git command line for publishing benchmark
// pages.
package git

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultRemote is the remote branches are fetched from and pushed to.
const DefaultRemote = "origin"

// An Error is a failed git invocation.
type Error struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Repo is a git working tree. It implements benchpub.VCS.
type Repo struct {
	// Dir is the working tree. If empty, the current directory is used.
	Dir string
	// Remote defaults to DefaultRemote.
	Remote string

	Log logrus.FieldLogger
}

func (r *Repo) remote() string {
	if r.Remote == "" {
		return DefaultRemote
	}
	return r.Remote
}

func (r *Repo) log() logrus.FieldLogger {
	if r.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		r.Log = l
	}
	return r.Log
}

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.log().WithField("args", args).Debug("git")
	if err := cmd.Run(); err != nil {
		return "", &Error{Args: args, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Switch checks out branch, first fetching it from the remote if fetch
// is set.
func (r *Repo) Switch(ctx context.Context, branch string, fetch bool) error {
	if fetch {
		if _, err := r.run(ctx, "fetch", r.remote(), branch); err != nil {
			return err
		}
	}
	_, err := r.run(ctx, "checkout", branch)
	return err
}

// CreateBranch creates branch at HEAD and checks it out.
func (r *Repo) CreateBranch(ctx context.Context, branch string) error {
	_, err := r.run(ctx, "checkout", "-b", branch)
	return err
}

// Commit stages paths and commits the index with msg.
func (r *Repo) Commit(ctx context.Context, paths []string, msg string) error {
	if len(paths) > 0 {
		if _, err := r.run(ctx, append([]string{"add", "--"}, paths...)...); err != nil {
			return err
		}
	}
	_, err := r.run(ctx, "commit", "-m", msg)
	return err
}

// Push pushes branch to the remote.
func (r *Repo) Push(ctx context.Context, branch string) error {
	_, err := r.run(ctx, "push", r.remote(), branch)
	return err
}

// CurrentBranch returns the name of the checked out branch.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	return r.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// RequireBranch returns an error unless branch is checked out, since
// Push pushes the named branch rather than HEAD.
func (r *Repo) RequireBranch(ctx context.Context, branch string) error {
	cur, err := r.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	if cur != branch {
		return errors.Errorf("publishing requires branch %s to be checked out, on %s", branch, cur)
	}
	return nil
}

// Configure sets the global committer identity and marks repoDir as a
// safe directory, as CI checkouts are often owned by another user.
func Configure(ctx context.Context, repoDir, email, name string, log logrus.FieldLogger) error {
	r := &Repo{Log: log}
	for _, args := range [][]string{
		{"config", "--global", "--add", "safe.directory", repoDir},
		{"config", "--global", "user.email", email},
		{"config", "--global", "user.name", name},
	} {
		if _, err := r.run(ctx, args...); err != nil {
			return errors.Wrapf(err, "setting %s", args[len(args)-2])
		}
	}
	return nil
}
