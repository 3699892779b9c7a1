// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestDefaults(t *testing.T) {
	cfg, err := Load(newFlags(t), "")
	require.NoError(t, err)
	want := Default()
	assert.Equal(t, &want, cfg)
	assert.Equal(t, 1.0, cfg.Thresholds().Noise)
}

func TestLoadNilFlags(t *testing.T) {
	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "bench", cfg.BenchDir)
}

func TestPrecedence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "benchpages.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
bench_dir: pages
history: 5
branch: from-file
noise_threshold: 2.5
summary: true
git:
  user_name: file-bot
github:
  owner: zchee
  repo: demo
`), 0o644))

	t.Setenv("BENCHPAGES_BRANCH", "from-env")
	t.Setenv("BENCHPAGES_GITHUB_TOKEN", "tok")
	t.Setenv("BENCHPAGES_HISTORY", "7")

	cfg, err := Load(newFlags(t, "--history", "3", "--csv"), file)
	require.NoError(t, err)

	assert.Equal(t, "pages", cfg.BenchDir)        // file
	assert.Equal(t, "from-env", cfg.Branch)       // env over file
	assert.Equal(t, 3, cfg.History)               // flag over env
	assert.Equal(t, 2.5, cfg.NoiseThreshold)      // file
	assert.True(t, cfg.Summary)                   // file
	assert.True(t, cfg.CSV)                       // flag
	assert.False(t, cfg.HTML)                     // default
	assert.Equal(t, "file-bot", cfg.Git.UserName) // nested file key
	assert.Equal(t, "bench-bot@github.com", cfg.Git.UserEmail)
	assert.Equal(t, GitHub{Token: "tok", Owner: "zchee", Repo: "demo"}, cfg.GitHub)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(nil, filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.yaml")
}

func TestValidate(t *testing.T) {
	for _, tt := range []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"ok", func(*Config) {}, ""},
		{"empty bench dir", func(c *Config) { c.BenchDir = "" }, "bench_dir"},
		{"empty branch", func(c *Config) { c.Branch = "" }, "branch"},
		{"negative noise", func(c *Config) { c.NoiseThreshold = -1 }, "noise_threshold"},
		{"long suffix", func(c *Config) { c.SuffixLength = 11 }, "suffix_length"},
		{"zero suffix", func(c *Config) { c.SuffixLength = 0 }, "suffix_length"},
		{"numbered storage", func(c *Config) { c.Storage = "42" }, ""},
		{"baseline storage", func(c *Config) { c.Storage = "dev" }, ""},
		{"bad storage", func(c *Config) { c.Storage = "../x" }, "storage"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestFlagsCoverSettings(t *testing.T) {
	fs := newFlags(t)
	for _, s := range settings {
		assert.NotNil(t, fs.Lookup(s.flag), s.flag)
	}
}
