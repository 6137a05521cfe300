// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package github opens pull requests with copyright fixes.
package github

import (
	"context"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	gh "github.com/google/go-github/v68/github"
)

// Client talks to the GitHub API.
type Client struct {
	c *gh.Client
}

// New returns a Client that uses httpClient, or [http.DefaultClient] if it is
// nil. An empty token makes unauthenticated requests.
func New(httpClient *http.Client, token string) *Client {
	c := gh.NewClient(httpClient)
	if token != "" {
		c = c.WithAuthToken(token)
	}
	return &Client{c: c}
}

// WithBaseURL points the client at a GitHub Enterprise server.
func (c *Client) WithBaseURL(baseURL string) (*Client, error) {
	ec, err := c.c.WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "setting base URL %q", baseURL)
	}
	return &Client{c: ec}, nil
}

// PullRequest describes a pull request to open.
type PullRequest struct {
	Owner, Repo string
	// Head is the branch with the changes, Base is the branch to merge into.
	Head, Base  string
	Title, Body string
	Labels      []string
}

// OpenPullRequest opens pr and returns its URL. Labels are added after the
// pull request is created; failing to add them is an error, but the pull
// request stays open.
func (c *Client) OpenPullRequest(ctx context.Context, pr PullRequest) (string, error) {
	created, _, err := c.c.PullRequests.Create(ctx, pr.Owner, pr.Repo, &gh.NewPullRequest{
		Title: gh.Ptr(pr.Title),
		Head:  gh.Ptr(pr.Head),
		Base:  gh.Ptr(pr.Base),
		Body:  gh.Ptr(pr.Body),
	})
	if err != nil {
		return "", errors.Wrapf(err, "creating pull request in %s/%s", pr.Owner, pr.Repo)
	}
	if len(pr.Labels) > 0 {
		if _, _, err := c.c.Issues.AddLabelsToIssue(ctx, pr.Owner, pr.Repo, created.GetNumber(), pr.Labels); err != nil {
			return created.GetHTMLURL(), errors.Wrapf(err, "labeling pull request #%d", created.GetNumber())
		}
	}
	return created.GetHTMLURL(), nil
}

// SplitRepo splits "owner/name" into its parts.
func SplitRepo(s string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(s, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", errors.Newf("repository %q is not in owner/name form", s)
	}
	return owner, name, nil
}
