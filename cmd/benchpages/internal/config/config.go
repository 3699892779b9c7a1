// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads benchpages settings from flags, the environment
// and an optional YAML file.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/zchee/benchpages/benchhist"
	"github.com/zchee/benchpages/benchmath"
	"github.com/zchee/benchpages/benchpub"
)

// EnvPrefix prefixes environment variables, e.g. BENCHPAGES_BENCH_DIR or
// BENCHPAGES_GITHUB_TOKEN.
const EnvPrefix = "BENCHPAGES"

type Git struct {
	UserEmail string `mapstructure:"user_email"`
	UserName  string `mapstructure:"user_name"`
}

type GitHub struct {
	Token   string `mapstructure:"token"`
	Owner   string `mapstructure:"owner"`
	Repo    string `mapstructure:"repo"`
	BaseURL string `mapstructure:"base_url"`
}

// Config holds every setting.
type Config struct {
	// BenchDir is the benchmark root, relative to RepoDir.
	BenchDir string `mapstructure:"bench_dir"`
	// Storage is the snapshot directory new results are stored under.
	// Empty means the pull request number.
	Storage        string  `mapstructure:"storage"`
	History        int     `mapstructure:"history"`
	Branch         string  `mapstructure:"branch"`
	FallbackPrefix string  `mapstructure:"fallback_prefix"`
	NoiseThreshold float64 `mapstructure:"noise_threshold"`
	Summary        bool    `mapstructure:"summary"`
	HTML           bool    `mapstructure:"html"`
	CSV            bool    `mapstructure:"csv"`
	SuffixLength   int     `mapstructure:"suffix_length"`
	// Seed seeds fallback branch names. Zero picks a random seed.
	Seed    int64  `mapstructure:"seed"`
	RepoDir string `mapstructure:"repo_dir"`

	Git    Git    `mapstructure:"git"`
	GitHub GitHub `mapstructure:"github"`
}

// Default returns the default settings.
func Default() Config {
	return Config{
		BenchDir:       "bench",
		History:        1,
		Branch:         "gh-pages",
		FallbackPrefix: "gh-pages_",
		NoiseThreshold: benchmath.DefaultThresholds.Noise,
		SuffixLength:   benchpub.DefaultLength,
		RepoDir:        ".",
		Git: Git{
			UserEmail: "bench-bot@github.com",
			UserName:  "bench-bot",
		},
	}
}

type setting struct {
	key, flag, usage string
}

var settings = []setting{
	{"bench_dir", "bench-dir", "benchmark root `dir` on the pages branch"},
	{"storage", "storage", "snapshot `dir` for new results (default: the pull request number)"},
	{"history", "history", "keep the newest `n` numbered snapshots; 0 keeps all"},
	{"branch", "branch", "pages `branch` to publish to"},
	{"fallback_prefix", "fallback-prefix", "name `prefix` of the branch pushed when the pages branch is rejected"},
	{"noise_threshold", "noise-threshold", "ignore changes smaller than `pct` percent"},
	{"summary", "summary", "add a geomean summary to each snapshot"},
	{"html", "html", "also write index.html"},
	{"csv", "csv", "also write index.csv"},
	{"suffix_length", "suffix-length", "`n` random digits in fallback branch names"},
	{"seed", "seed", "random `seed` for fallback branch names (0: random)"},
	{"repo_dir", "repo-dir", "local repository `dir`"},
	{"git.user_email", "git-user-email", "committer `email`"},
	{"git.user_name", "git-user-name", "committer `name`"},
	{"github.token", "github-token", "GitHub API `token`"},
	{"github.owner", "github-owner", "repository `owner`"},
	{"github.repo", "github-repo", "repository `name`"},
	{"github.base_url", "github-base-url", "GitHub API `url`"},
}

// AddFlags registers a flag for every setting on fs.
func AddFlags(fs *pflag.FlagSet) {
	d := Default()
	for _, s := range settings {
		switch s.key {
		case "history":
			fs.Int(s.flag, d.History, s.usage)
		case "suffix_length":
			fs.Int(s.flag, d.SuffixLength, s.usage)
		case "seed":
			fs.Int64(s.flag, d.Seed, s.usage)
		case "noise_threshold":
			fs.Float64(s.flag, d.NoiseThreshold, s.usage)
		case "summary", "html", "csv":
			fs.Bool(s.flag, false, s.usage)
		default:
			fs.String(s.flag, stringDefault(d, s.key), s.usage)
		}
	}
}

func stringDefault(d Config, key string) string {
	switch key {
	case "bench_dir":
		return d.BenchDir
	case "branch":
		return d.Branch
	case "fallback_prefix":
		return d.FallbackPrefix
	case "repo_dir":
		return d.RepoDir
	case "git.user_email":
		return d.Git.UserEmail
	case "git.user_name":
		return d.Git.UserName
	}
	return ""
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("bench_dir", d.BenchDir)
	v.SetDefault("storage", d.Storage)
	v.SetDefault("history", d.History)
	v.SetDefault("branch", d.Branch)
	v.SetDefault("fallback_prefix", d.FallbackPrefix)
	v.SetDefault("noise_threshold", d.NoiseThreshold)
	v.SetDefault("summary", d.Summary)
	v.SetDefault("html", d.HTML)
	v.SetDefault("csv", d.CSV)
	v.SetDefault("suffix_length", d.SuffixLength)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("repo_dir", d.RepoDir)
	v.SetDefault("git.user_email", d.Git.UserEmail)
	v.SetDefault("git.user_name", d.Git.UserName)
	v.SetDefault("github.token", d.GitHub.Token)
	v.SetDefault("github.owner", d.GitHub.Owner)
	v.SetDefault("github.repo", d.GitHub.Repo)
	v.SetDefault("github.base_url", d.GitHub.BaseURL)
}

// Load resolves the settings. Flags set on the command line win over
// the environment, which wins over file, which wins over defaults. fs
// may be nil; file may be empty.
func Load(fs *pflag.FlagSet, file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for _, s := range settings {
			if f := fs.Lookup(s.flag); f != nil {
				if err := v.BindPFlag(s.key, f); err != nil {
					return nil, errors.Wrapf(err, "binding --%s", s.flag)
				}
			}
		}
	}

	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config %s", file)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.BenchDir == "":
		return errors.New("bench_dir must not be empty")
	case c.Branch == "":
		return errors.New("branch must not be empty")
	case c.NoiseThreshold < 0:
		return errors.Errorf("noise_threshold must be non-negative, got %v", c.NoiseThreshold)
	case c.SuffixLength < 1 || c.SuffixLength > len(benchpub.DefaultAlphabet):
		return errors.Errorf("suffix_length must be in [1, %d], got %d", len(benchpub.DefaultAlphabet), c.SuffixLength)
	}
	if c.Storage != "" && c.Storage != benchhist.Baseline && !benchhist.IsSnapshotLabel(c.Storage) {
		return errors.Errorf("storage must be %q or a positive number, got %q", benchhist.Baseline, c.Storage)
	}
	return nil
}

// Thresholds returns the classification thresholds.
func (c *Config) Thresholds() *benchmath.Thresholds {
	return &benchmath.Thresholds{Noise: c.NoiseThreshold}
}
