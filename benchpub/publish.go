// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchpub publishes generated benchmark pages to a shared
// branch.
//
// The target branch (typically gh-pages) is shared by every pipeline run.
// If the push is rejected, usually because another run pushed first, the
// commit is pushed to a fresh, randomly suffixed branch instead, so that
// a lost race leaves a side branch rather than losing results. There is
// exactly one fallback attempt; there are no retries.
package benchpub

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// CommitMessage is the message of the commit holding published pages.
const CommitMessage = "add benchmarks"

// VCS is the version control a Coordinator publishes through. Errors are
// returned unchanged to the caller of Publish.
type VCS interface {
	// Switch checks out branch, first fetching it from the remote
	// if fetch is set.
	Switch(ctx context.Context, branch string, fetch bool) error
	// CreateBranch creates branch at the current commit and
	// checks it out.
	CreateBranch(ctx context.Context, branch string) error
	// Commit stages paths and commits them with msg.
	Commit(ctx context.Context, paths []string, msg string) error
	// Push pushes branch to the remote.
	Push(ctx context.Context, branch string) error
}

// A Result is the outcome of a successful Publish.
type Result struct {
	// Branch is the branch the pages were pushed to.
	Branch string
	// Fallback reports whether Branch is a fallback branch.
	Fallback bool
}

// A PushError reports that neither the target branch nor the fallback
// branch could be pushed.
type PushError struct {
	Branch   string
	Fallback string // empty if no fallback name could be made
	Err      error  // the fallback failure
	Primary  error  // the target branch failure
}

func (e *PushError) Error() string {
	if e.Fallback == "" {
		return fmt.Sprintf("failed to push branch %s and no fallback branch was made: %v", e.Branch, e.Err)
	}
	return fmt.Sprintf("failed to push branch %s (%v); fallback branch %s also failed: %v", e.Branch, e.Primary, e.Fallback, e.Err)
}

func (e *PushError) Unwrap() error {
	return e.Err
}

// A Coordinator commits and pushes benchmark pages.
type Coordinator struct {
	VCS VCS

	// Names generates fallback branch names. If nil, a generator
	// seeded from the current time is used.
	Names *NameGenerator

	// Log receives progress messages. If nil, nothing is logged.
	Log logrus.FieldLogger
}

func (c *Coordinator) log() logrus.FieldLogger {
	if c.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.Log = l
	}
	return c.Log
}

func (c *Coordinator) names() *NameGenerator {
	if c.Names == nil {
		c.Names = NewNameGenerator(time.Now().UnixNano())
	}
	return c.Names
}

// Publish commits paths on the current checkout and pushes branch. If the
// push fails, it creates a branch named fallbackPrefix plus a random
// suffix at the new commit and pushes that instead. The target branch is
// not modified by the fallback.
func (c *Coordinator) Publish(ctx context.Context, paths []string, branch, fallbackPrefix string) (Result, error) {
	log := c.log().WithField("branch", branch)

	if err := c.VCS.Commit(ctx, paths, CommitMessage); err != nil {
		return Result{}, errors.Wrap(err, "committing benchmark pages")
	}

	log.Info("pushing")
	primary := c.VCS.Push(ctx, branch)
	if primary == nil {
		return Result{Branch: branch}, nil
	}
	log.WithError(primary).Warn("push rejected, falling back")

	fallback, err := c.names().Name(fallbackPrefix)
	if err != nil {
		return Result{}, &PushError{Branch: branch, Err: err, Primary: primary}
	}
	log = log.WithField("fallback", fallback)
	if err := c.VCS.CreateBranch(ctx, fallback); err != nil {
		return Result{}, &PushError{Branch: branch, Fallback: fallback, Err: err, Primary: primary}
	}
	if err := c.VCS.Push(ctx, fallback); err != nil {
		return Result{}, &PushError{Branch: branch, Fallback: fallback, Err: err, Primary: primary}
	}
	log.Info("pushed fallback branch")
	return Result{Branch: fallback, Fallback: true}, nil
}
