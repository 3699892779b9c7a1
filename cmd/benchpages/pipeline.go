// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/zchee/benchpages/benchhist"
	"github.com/zchee/benchpages/benchpub"
	"github.com/zchee/benchpages/cmd/benchpages/internal/benchindex"
	"github.com/zchee/benchpages/cmd/benchpages/internal/cargo"
	"github.com/zchee/benchpages/cmd/benchpages/internal/config"
)

const (
	indexMarkdown = "index.md"
	indexHTML     = "index.html"
	indexCSV      = "index.csv"
)

func history(cfg *config.Config, log logrus.FieldLogger) *benchhist.History {
	return &benchhist.History{
		Root:      filepath.Join(cfg.RepoDir, cfg.BenchDir),
		Retention: cfg.History,
		Log:       log,
	}
}

// writeIndex prunes the snapshot history, normalizes report page names
// and writes the index files. It returns the files it wrote.
func writeIndex(cfg *config.Config, log logrus.FieldLogger) ([]string, error) {
	h := history(cfg, log)
	dirs, err := h.Select()
	if err != nil {
		return nil, err
	}
	if err := h.Normalize(dirs); err != nil {
		return nil, err
	}
	snaps := make([]benchhist.Snapshot, 0, len(dirs))
	for _, dir := range dirs {
		snap, err := h.Load(dir)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}

	md, err := benchindex.RenderDocument(snaps, benchindex.Options{
		Thresholds: cfg.Thresholds(),
		Summary:    cfg.Summary,
	})
	if err != nil {
		return nil, errors.Wrap(err, "rendering index")
	}

	var written []string
	write := func(name string, data []byte) error {
		p := filepath.Join(h.Root, name)
		if err := os.WriteFile(p, data, 0o644); err != nil {
			return errors.Wrapf(err, "writing %s", name)
		}
		written = append(written, p)
		return nil
	}
	if err := write(indexMarkdown, []byte(md)); err != nil {
		return nil, err
	}
	if cfg.HTML {
		if err := write(indexHTML, benchindex.ToHTML([]byte(md))); err != nil {
			return nil, err
		}
	}
	if cfg.CSV {
		p := filepath.Join(h.Root, indexCSV)
		f, err := os.Create(p)
		if err != nil {
			return nil, errors.Wrapf(err, "writing %s", indexCSV)
		}
		err = benchindex.WriteCSV(f, snaps, cfg.Thresholds())
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, errors.Wrapf(err, "writing %s", indexCSV)
		}
		written = append(written, p)
	}
	log.WithFields(logrus.Fields{"snapshots": len(snaps), "root": h.Root}).Info("wrote index")
	return written, nil
}

func names(cfg *config.Config) *benchpub.NameGenerator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := benchpub.NewNameGenerator(seed)
	g.Length = cfg.SuffixLength
	return g
}

// publish commits the benchmark root and pushes it to the pages branch,
// falling back to a fresh branch if the push is rejected.
func publish(ctx context.Context, cfg *config.Config, vcs benchpub.VCS, log logrus.FieldLogger) (benchpub.Result, error) {
	c := &benchpub.Coordinator{VCS: vcs, Names: names(cfg), Log: log}
	res, err := c.Publish(ctx, []string{cfg.BenchDir}, cfg.Branch, cfg.FallbackPrefix)
	if err != nil {
		return res, err
	}
	if res.Fallback {
		log.WithField("branch", res.Branch).Warn("published to fallback branch")
	}
	return res, nil
}

type benchmarker interface {
	RunBenchmark(ctx context.Context) ([]cargo.Benchmark, error)
}

// checkReports logs the outcome of a benchmark run and returns the IDs
// of benchmarks whose report directory is missing. Relative report
// directories are resolved against dir.
func checkReports(dir string, benches []cargo.Benchmark, log logrus.FieldLogger) []string {
	var improved, regressed int
	var missing []string
	for _, b := range benches {
		if b.Change != nil {
			switch b.Change.Change {
			case "Improved":
				improved++
			case "Regressed":
				regressed++
			}
		}
		if b.ReportDirectory == "" {
			continue
		}
		report := b.ReportDirectory
		if !filepath.IsAbs(report) {
			report = filepath.Join(dir, report)
		}
		if fi, err := os.Stat(report); err != nil || !fi.IsDir() {
			log.WithFields(logrus.Fields{"benchmark": b.ID, "dir": report}).Warn("report directory missing")
			missing = append(missing, b.ID)
		}
	}
	log.WithFields(logrus.Fields{
		"benchmarks": len(benches),
		"improved":   improved,
		"regressed":  regressed,
	}).Info("benchmarks complete")
	return missing
}

// pipeline benchmarks a checkout and publishes the results.
type pipeline struct {
	cfg   *config.Config
	vcs   benchpub.VCS
	bench benchmarker
	log   logrus.FieldLogger
}

// run benchmarks the checked out code against the baseline and
// publishes the reports as snapshot pr. The work happens on a temporary
// branch so the pages branch can be checked out in the same tree.
func (p *pipeline) run(ctx context.Context, pr string) (benchpub.Result, error) {
	if !benchhist.IsSnapshotLabel(pr) {
		return benchpub.Result{}, errors.Errorf("invalid pull request number %q", pr)
	}
	storage := p.cfg.Storage
	if storage == "" {
		storage = pr
	}
	h := history(p.cfg, p.log)
	target := filepath.Join(p.cfg.RepoDir, cargo.TargetDir)

	temp, err := names(p.cfg).Name(benchpub.TempPrefix)
	if err != nil {
		return benchpub.Result{}, err
	}
	p.log.WithField("branch", temp).Info("benchmarking on temporary branch")
	if err := p.vcs.CreateBranch(ctx, temp); err != nil {
		return benchpub.Result{}, errors.Wrap(err, "creating temporary branch")
	}

	// criterion compares against whatever it finds in its target
	// directory, so seed that with the baseline.
	if err := p.vcs.Switch(ctx, p.cfg.Branch, true); err != nil {
		return benchpub.Result{}, errors.Wrapf(err, "switching to %s", p.cfg.Branch)
	}
	if _, err := h.RestoreBaseline(target); err != nil {
		return benchpub.Result{}, err
	}
	if err := p.vcs.Switch(ctx, temp, false); err != nil {
		return benchpub.Result{}, errors.Wrapf(err, "switching to %s", temp)
	}

	benches, err := p.bench.RunBenchmark(ctx)
	if err != nil {
		return benchpub.Result{}, err
	}
	checkReports(p.cfg.RepoDir, benches, p.log)

	if err := p.vcs.Switch(ctx, p.cfg.Branch, true); err != nil {
		return benchpub.Result{}, errors.Wrapf(err, "switching to %s", p.cfg.Branch)
	}
	if err := h.Store(storage, target); err != nil {
		return benchpub.Result{}, err
	}
	if _, err := writeIndex(p.cfg, p.log); err != nil {
		return benchpub.Result{}, err
	}
	return publish(ctx, p.cfg, p.vcs, p.log)
}
