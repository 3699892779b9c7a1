// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cargo runs Rust benchmarks with cargo-criterion.
package cargo

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// TargetDir is where cargo-criterion writes its reports, relative to the
// project root.
var TargetDir = filepath.Join("target", "criterion")

// An Estimate is a point estimate with its confidence interval.
type Estimate struct {
	Estimate   float64 `json:"estimate"`
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
	Unit       string  `json:"unit"`
}

// A Change compares a benchmark against its saved baseline.
type Change struct {
	Mean   Estimate `json:"mean"`
	Median Estimate `json:"median"`
	// Change is "NoChange", "Improved" or "Regressed".
	Change string `json:"change"`
}

// A Benchmark is a benchmark-complete message.
type Benchmark struct {
	ID              string   `json:"id"`
	ReportDirectory string   `json:"report_directory"`
	Typical         Estimate `json:"typical"`
	// Change is nil if there was no baseline.
	Change *Change `json:"change"`
}

type message struct {
	Reason string `json:"reason"`
	Benchmark
}

// ParseMessages reads cargo-criterion's --message-format=json output
// and returns the completed benchmarks. Lines that are not benchmark
// messages are skipped.
func ParseMessages(r io.Reader) ([]Benchmark, error) {
	var benches []Benchmark
	s := bufio.NewScanner(r)
	s.Buffer(nil, 16<<20)
	for s.Scan() {
		line := bytes.TrimSpace(s.Bytes())
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		var m message
		if err := json.Unmarshal(line, &m); err != nil {
			continue
		}
		if m.Reason == "benchmark-complete" {
			benches = append(benches, m.Benchmark)
		}
	}
	return benches, s.Err()
}

// Runner runs cargo-criterion in a project.
type Runner struct {
	// Dir is the project root. If empty, the current directory is used.
	Dir string
	// Stderr receives cargo's diagnostics. If nil, they are discarded.
	Stderr io.Writer

	Log logrus.FieldLogger

	// Command creates the process. It defaults to exec.CommandContext.
	Command func(ctx context.Context, name string, arg ...string) *exec.Cmd
}

func (r *Runner) log() logrus.FieldLogger {
	if r.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		r.Log = l
	}
	return r.Log
}

// RunBenchmark runs "cargo criterion --message-format=json" and returns
// the benchmarks it completed. Reports are left under TargetDir.
func (r *Runner) RunBenchmark(ctx context.Context) ([]Benchmark, error) {
	command := r.Command
	if command == nil {
		command = exec.CommandContext
	}
	cmd := command(ctx, "cargo", "criterion", "--message-format=json")
	cmd.Dir = r.Dir
	cmd.Stderr = r.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "cargo criterion")
	}
	r.log().WithField("dir", r.Dir).Info("running cargo criterion")
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(err, "starting cargo criterion")
	}
	benches, perr := ParseMessages(stdout)
	if perr != nil {
		io.Copy(io.Discard, stdout)
	}
	if err := cmd.Wait(); err != nil {
		return nil, errors.Wrap(err, "cargo criterion")
	}
	if perr != nil {
		return nil, errors.Wrap(perr, "reading cargo criterion output")
	}

	for _, b := range benches {
		entry := r.log().WithField("id", b.ID)
		if b.Change != nil {
			entry = entry.WithFields(logrus.Fields{
				"change": b.Change.Change,
				"mean":   b.Change.Mean.Estimate,
			})
		}
		entry.Debug("benchmark complete")
	}
	r.log().WithField("benchmarks", len(benches)).Info("cargo criterion finished")
	return benches, nil
}
