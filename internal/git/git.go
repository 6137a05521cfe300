// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package git runs git commands in a working tree.
package git

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ChangedFiles returns the paths changed by the last commits commits
// ending at sha, relative to the repository root. commits below 1 is treated
// as 1.
func ChangedFiles(ctx context.Context, dir, sha string, commits int) ([]string, error) {
	if sha == "" {
		sha = "HEAD"
	}
	commits = max(commits, 1)
	out, err := run(ctx, dir, "diff", "--name-only", sha+"~"+strconv.Itoa(commits), sha)
	if err != nil {
		return nil, err
	}
	var files []string
	for f := range strings.SplitSeq(out, "\n") {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, f)
		}
	}
	return files, nil
}

// CurrentBranch returns the name of the checked out branch.
func CurrentBranch(ctx context.Context, dir string) (string, error) {
	out, err := run(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CommitOptions configure Commit.
type CommitOptions struct {
	// Branch, if set, is created or reset to the current commit and checked
	// out before committing.
	Branch string
	// Message is the commit message.
	Message string
	// AuthorName and AuthorEmail override the configured author when both
	// are set.
	AuthorName  string
	AuthorEmail string
}

// Commit stages all changes of the working tree and commits them. It reports
// whether a commit was made; nothing is committed when there are no changes.
func Commit(ctx context.Context, dir string, opts CommitOptions) (bool, error) {
	if opts.Message == "" {
		return false, errors.New("empty commit message")
	}
	if opts.Branch != "" {
		if _, err := run(ctx, dir, "checkout", "-B", opts.Branch); err != nil {
			return false, err
		}
	}
	if _, err := run(ctx, dir, "add", "--all"); err != nil {
		return false, err
	}

	// diff --quiet exits with 1 when there are differences.
	_, err := run(ctx, dir, "diff", "--cached", "--quiet")
	if err == nil {
		return false, nil
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
		return false, err
	}

	args := []string{"commit", "--quiet", "--message", opts.Message}
	if opts.AuthorName != "" && opts.AuthorEmail != "" {
		args = append(args, "--author", opts.AuthorName+" <"+opts.AuthorEmail+">")
	}
	if _, err := run(ctx, dir, args...); err != nil {
		return false, err
	}
	return true, nil
}

// Push pushes branch to remote, setting it as upstream.
func Push(ctx context.Context, dir, remote, branch string) error {
	if remote == "" {
		remote = "origin"
	}
	_, err := run(ctx, dir, "push", "--set-upstream", remote, branch)
	return err
}

func run(ctx context.Context, dir string, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(err, "git %s: %s", strings.Join(args, " "), strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
