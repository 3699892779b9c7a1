// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Benchpages publishes cargo-criterion benchmark reports to a pages
// branch and maintains a markdown index of recent results.
//
// Usage:
//
//	benchpages [flags] command [args...]
//
// The benchmark root (by default "bench" on the gh-pages branch) holds
// one snapshot directory per benchmarked pull request plus the baseline
// "dev":
//
//	bench/
//	    index.md
//	    dev/criterion/reports/fib/index.html
//	    42/criterion/reports/fib/index.html
//
// The commands are:
//
//	index            prune old snapshots and regenerate index.md
//	publish          commit the benchmark root and push it
//	run PR           benchmark the checkout and publish it as snapshot PR
//	has-change PR    report whether a pull request changes Rust code
//
// Index
//
// "benchpages index" keeps the newest -history numbered snapshots,
// renames criterion's history.html pages to index.html, and writes
// index.md. For every snapshot, newest first with the baseline at the
// top, the index lists each benchmark's change interval twice: sorted
// by change, most improved first, and sorted by name. A change is
// shown in green if it is a significant improvement, red if it is a
// significant regression, and black otherwise. A change is significant
// when its middle value moves by at least -noise-threshold percent and
// both bounds of its interval have the same sign:
//
//	## 42 - Sorted By Performance Change
//	- <span style="color:green"> [-6.00%, <b>-5.00%</b>, -4.00%] </span>  [vec::push](42/criterion/reports/vec__push/index.html)
//	- <span style="color:black"> [-0.80%, <b>-0.10%</b>, +0.60%] </span>  [parse::expr](42/criterion/reports/parse__expr/index.html)
//
// Publishing
//
// The pages branch is shared by every run, so a push may be rejected
// because another run pushed first. In that case benchpages pushes the
// same commit to a new branch named -fallback-prefix followed by
// -suffix-length random digits and exits successfully, printing the
// branch it pushed.
//
// Configuration
//
// Every flag may also be set in a YAML file passed with -config, using
// the flag name with dashes replaced by underscores (git and github
// flags nest under "git:" and "github:"), or in the environment as
// BENCHPAGES_ followed by the upper-cased key, e.g.
// BENCHPAGES_GITHUB_TOKEN. Flags win over the environment, which wins
// over the file.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zchee/benchpages/benchhist"
	"github.com/zchee/benchpages/cmd/benchpages/internal/cargo"
	"github.com/zchee/benchpages/cmd/benchpages/internal/config"
	"github.com/zchee/benchpages/cmd/benchpages/internal/git"
	"github.com/zchee/benchpages/cmd/benchpages/internal/github"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := benchpages(ctx, os.Stdout, os.Stderr, os.Args[1:])
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "benchpages: %s\n", err)
		os.Exit(1)
	}
}

func benchpages(ctx context.Context, w, wErr io.Writer, args []string) error {
	cmd := newCommand(w, wErr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// app is the state shared by the commands of one invocation.
type app struct {
	w, wErr io.Writer

	cfgFile string
	verbose bool

	cfg *config.Config
	log *logrus.Logger
}

func newCommand(w, wErr io.Writer) *cobra.Command {
	a := &app{w: w, wErr: wErr}

	root := &cobra.Command{
		Use:   "benchpages",
		Short: "Publish criterion benchmark reports to a pages branch",
		Long: `benchpages publishes cargo-criterion benchmark reports to a pages branch
and maintains a markdown index of the most recent results, color-coded
by significance.

For details, run "go doc github.com/zchee/benchpages/cmd/benchpages".`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(w)
	root.SetErr(wErr)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "read settings from YAML `file`")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log debug messages")
	config.AddFlags(pf)

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		a.log = newLogger(a.wErr, a.verbose)
		cfg, err := config.Load(pf, a.cfgFile)
		if err != nil {
			return err
		}
		a.cfg = cfg
		return nil
	}

	root.AddCommand(a.indexCommand(), a.publishCommand(), a.runCommand(), a.hasChangeCommand())
	return root
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func (a *app) indexCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Prune old snapshots and regenerate the benchmark index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			written, err := writeIndex(a.cfg, a.log)
			if err != nil {
				return err
			}
			for _, p := range written {
				fmt.Fprintln(a.w, p)
			}
			return nil
		},
	}
}

func (a *app) publishCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Commit the benchmark root and push it to the pages branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := &git.Repo{Dir: a.cfg.RepoDir, Log: a.log}
			if err := repo.RequireBranch(cmd.Context(), a.cfg.Branch); err != nil {
				return err
			}
			res, err := publish(cmd.Context(), a.cfg, repo, a.log)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.w, res.Branch)
			return nil
		},
	}
}

func (a *app) runCommand() *cobra.Command {
	var configureGit bool
	cmd := &cobra.Command{
		Use:   "run PR",
		Short: "Benchmark the checkout and publish the results as snapshot PR",
		Long: `run benchmarks the current checkout with "cargo criterion" against the
baseline snapshot, stores the reports as snapshot PR (or -storage),
regenerates the index and publishes the pages branch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if configureGit {
				if err := git.Configure(ctx, a.cfg.RepoDir, a.cfg.Git.UserEmail, a.cfg.Git.UserName, a.log); err != nil {
					return errors.Wrap(err, "configuring git")
				}
			}
			p := &pipeline{
				cfg:   a.cfg,
				vcs:   &git.Repo{Dir: a.cfg.RepoDir, Log: a.log},
				bench: &cargo.Runner{Dir: a.cfg.RepoDir, Stderr: a.wErr, Log: a.log},
				log:   a.log,
			}
			res, err := p.run(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.w, res.Branch)
			return nil
		},
	}
	cmd.Flags().BoolVar(&configureGit, "configure-git", true, "set the global git identity and mark the repository safe")
	return cmd
}

func (a *app) hasChangeCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "has-change PR",
		Short: "Report whether a pull request changes Rust sources or Cargo files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := strconv.Atoi(args[0])
			if err != nil || !benchhist.IsSnapshotLabel(args[0]) {
				return errors.Errorf("invalid pull request number %q", args[0])
			}
			gh := a.cfg.GitHub
			if gh.Owner == "" || gh.Repo == "" {
				return errors.New("has-change needs --github-owner and --github-repo")
			}
			repo := github.NewRepository(cmd.Context(), gh.Token, gh.Owner, gh.Repo, gh.BaseURL)

			var changed bool
			if all {
				changed, err = repo.PRHasChange(cmd.Context(), number, nil)
			} else {
				changed, err = repo.PRHasRustChange(cmd.Context(), number)
			}
			if err != nil {
				return errors.Wrapf(err, "listing files of pull request %d", number)
			}
			fmt.Fprintln(a.w, changed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "report any change, not only Rust changes")
	return cmd
}
