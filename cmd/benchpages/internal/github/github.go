// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package github is a small client for the GitHub REST API covering the
// pull request and branch operations a benchmark workflow needs.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL = "https://api.github.com"

	defaultTimeout = 10 * time.Second
	perPage        = 100
)

// A Ref is one end of a pull request.
type Ref struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

// A PullRequest is the subset of a GitHub pull request used here.
type PullRequest struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	State   string `json:"state"`
	HTMLURL string `json:"html_url"`
	Head    Ref    `json:"head"`
	Base    Ref    `json:"base"`
}

// A NewPullRequest describes a pull request to open.
type NewPullRequest struct {
	Head  string `json:"head"`
	Base  string `json:"base"`
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
}

// A File is a file changed by a pull request.
type File struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Changes   int    `json:"changes"`
}

// A Branch is a repository branch.
type Branch struct {
	Name      string `json:"name"`
	Protected bool   `json:"protected"`
	Commit    struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

// An APIError is a non-success response from the API.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("GitHub API error: %s %s: %s", e.Method, e.URL, e.Status)
}

// Repository is a GitHub repository reached through the REST API.
type Repository struct {
	Owner string
	Repo  string

	client *resty.Client
}

// NewRepository returns a client for owner/repo. An empty token makes
// unauthenticated requests. An empty baseURL means DefaultBaseURL.
func NewRepository(ctx context.Context, token, owner, repo, baseURL string) *Repository {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	hc := &http.Client{}
	if token != "" {
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}
	client := resty.NewWithClient(hc).
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/vnd.github+json").
		SetHeader("X-GitHub-Api-Version", "2022-11-28")

	return &Repository{Owner: owner, Repo: repo, client: client}
}

func (r *Repository) url(elem ...string) string {
	return "/" + path.Join(append([]string{"repos", r.Owner, r.Repo}, elem...)...)
}

func (r *Repository) do(ctx context.Context, method, url string, body, result any) (*resty.Response, error) {
	req := r.client.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, url)
	}
	if resp.IsError() {
		return resp, &APIError{Method: method, URL: url, StatusCode: resp.StatusCode(), Status: resp.Status()}
	}
	if result != nil {
		if err := json.Unmarshal(resp.Body(), result); err != nil {
			return resp, errors.Wrapf(err, "decoding %s %s", method, url)
		}
	}
	return resp, nil
}

// list fetches every page of a list endpoint.
func list[T any](ctx context.Context, r *Repository, url string) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		var items []T
		q := url + "?per_page=" + strconv.Itoa(perPage) + "&page=" + strconv.Itoa(page)
		if _, err := r.do(ctx, http.MethodGet, q, nil, &items); err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) < perPage {
			return all, nil
		}
	}
}

// ListPullRequests lists the open pull requests.
func (r *Repository) ListPullRequests(ctx context.Context) ([]PullRequest, error) {
	return list[PullRequest](ctx, r, r.url("pulls"))
}

// CreatePullRequest opens a pull request from pr.Head into pr.Base. If an
// open pull request between the same branches exists, it is returned
// instead. If GitHub refuses the pull request as unprocessable, typically
// because there is nothing to merge, CreatePullRequest returns nil, nil.
func (r *Repository) CreatePullRequest(ctx context.Context, pr NewPullRequest) (*PullRequest, error) {
	if pr.Head == "" || pr.Base == "" {
		return nil, errors.New("pull request needs both head and base")
	}

	prs, err := r.ListPullRequests(ctx)
	if err != nil {
		return nil, err
	}
	for i := range prs {
		if prs[i].Head.Ref == pr.Head && prs[i].Base.Ref == pr.Base {
			return &prs[i], nil
		}
	}

	var created PullRequest
	resp, err := r.do(ctx, http.MethodPost, r.url("pulls"), pr, &created)
	if err != nil {
		if resp != nil && resp.StatusCode() == http.StatusUnprocessableEntity {
			return nil, nil
		}
		return nil, err
	}
	return &created, nil
}

// MergePullRequest merges pull request number.
func (r *Repository) MergePullRequest(ctx context.Context, number int) error {
	_, err := r.do(ctx, http.MethodPut, r.url("pulls", strconv.Itoa(number), "merge"), nil, nil)
	return err
}

// UpdateBranch brings branch update up to date with upstream by opening
// a pull request from upstream and merging it. It does nothing if there
// is nothing to merge.
func (r *Repository) UpdateBranch(ctx context.Context, update, upstream string) error {
	pr, err := r.CreatePullRequest(ctx, NewPullRequest{
		Base:  update,
		Head:  upstream,
		Title: fmt.Sprintf("Merge %s into %s", upstream, update),
	})
	if err != nil || pr == nil {
		return err
	}
	return r.MergePullRequest(ctx, pr.Number)
}

// ListPullRequestFiles lists the files changed by pull request number.
func (r *Repository) ListPullRequestFiles(ctx context.Context, number int) ([]File, error) {
	return list[File](ctx, r, r.url("pulls", strconv.Itoa(number), "files"))
}

// ListBranches lists the repository's branches.
func (r *Repository) ListBranches(ctx context.Context) ([]Branch, error) {
	return list[Branch](ctx, r, r.url("branches"))
}

// DeleteRef deletes a git reference such as "heads/feature" or
// "tags/v1".
func (r *Repository) DeleteRef(ctx context.Context, ref string) error {
	_, err := r.do(ctx, http.MethodDelete, r.url("git", "refs", ref), nil, nil)
	return err
}

// DeleteBranch deletes branch.
func (r *Repository) DeleteBranch(ctx context.Context, branch string) error {
	return r.DeleteRef(ctx, "heads/"+branch)
}

// PRHasChange reports whether pull request number changes any file for
// which pred returns true. A nil pred matches every file.
func (r *Repository) PRHasChange(ctx context.Context, number int, pred func(filename string) bool) (bool, error) {
	files, err := r.ListPullRequestFiles(ctx, number)
	if err != nil {
		return false, err
	}
	for _, f := range files {
		if pred == nil || pred(f.Filename) {
			return true, nil
		}
	}
	return false, nil
}

// PRHasRustChange reports whether pull request number changes Rust
// sources or Cargo manifests.
func (r *Repository) PRHasRustChange(ctx context.Context, number int) (bool, error) {
	return r.PRHasChange(ctx, number, IsRust)
}

// IsRust reports whether filename is a Rust source file or a Cargo
// manifest or lock file.
func IsRust(filename string) bool {
	switch path.Base(filename) {
	case "Cargo.toml", "Cargo.lock":
		return true
	}
	return path.Ext(filename) == ".rs"
}
