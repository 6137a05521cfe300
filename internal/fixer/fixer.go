// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package fixer brings the copyright headers of a repository up to date.
package fixer

import (
	"cmp"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"go.astrophena.name/copyright/header"
	"go.astrophena.name/copyright/internal/match"
	"go.astrophena.name/copyright/logger"
)

// Messages reported by no-op runs.
const (
	MsgNoLicense = "No license configured"
	MsgNoFiles   = "No matching files found"
)

// ChangeLister lists the files changed by the last commits ending at sha.
type ChangeLister interface {
	ChangedFiles(ctx context.Context, dir, sha string, commits int) ([]string, error)
}

// ChangeListerFunc adapts a function to [ChangeLister].
type ChangeListerFunc func(ctx context.Context, dir, sha string, commits int) ([]string, error)

// ChangedFiles calls f.
func (f ChangeListerFunc) ChangedFiles(ctx context.Context, dir, sha string, commits int) ([]string, error) {
	return f(ctx, dir, sha, commits)
}

// Options configure a run of [FixHeaders].
type Options struct {
	// Dir is the root of the working tree.
	Dir string
	// License is the SPDX identifier of the license. Empty means nothing to do.
	License string
	// Holder is the copyright holder; Owner when empty.
	Holder string
	// Owner is the repository owner.
	Owner string
	// SHA and Commits identify the pushed commits.
	SHA     string
	Commits int
	// OnlyChanged limits the run to the changed files.
	OnlyChanged  bool
	BlockComment bool
	// Globs select files and Ignores exclude them, see package match.
	Globs, Ignores []string
	// Changes lists the changed files. No files are changed when nil.
	Changes ChangeLister
	// Writer persists new file contents; a [FSWriter] when nil.
	Writer Writer
	// Year stamped into new headers; the current year when zero.
	Year int
}

// Result describes a run.
type Result struct {
	// Messages explain why a run did nothing.
	Messages []string
	// Matched are the candidate files, in processing order.
	Matched []string
	// Changed are the files whose content was rewritten.
	Changed []Change
	// Warnings are per-file problems that did not stop the run.
	Warnings []Warning
}

// Change is a rewritten file.
type Change struct {
	Path   string
	Action header.Action
}

// Warning is a problem with a single file.
type Warning struct {
	Path string
	Err  error
}

func (w Warning) Error() string {
	if w.Path == "" {
		return w.Err.Error()
	}
	return w.Path + ": " + w.Err.Error()
}

func (w Warning) Unwrap() error { return w.Err }

// FixHeaders inserts or refreshes the copyright header of every candidate
// file. Problems with single files are reported as warnings; an error is
// returned only when the run could not start.
func FixHeaders(ctx context.Context, opts Options) (*Result, error) {
	res := new(Result)
	if opts.License == "" {
		res.Messages = append(res.Messages, MsgNoLicense)
		return res, nil
	}
	holder := cmp.Or(opts.Holder, opts.Owner)
	year := opts.Year
	if year == 0 {
		year = time.Now().Year()
	}
	w := opts.Writer
	if w == nil {
		w = FSWriter{}
	}

	var changed []string
	if opts.Changes != nil {
		var err error
		changed, err = opts.Changes.ChangedFiles(ctx, opts.Dir, opts.SHA, opts.Commits)
		if err != nil {
			res.Warnings = append(res.Warnings, Warning{Err: errors.Wrap(err, "listing changed files")})
			changed = nil
		}
	}

	var (
		files []string
		err   error
	)
	if opts.OnlyChanged {
		files, err = match.Filter(changed, opts.Globs, opts.Ignores)
	} else {
		files, err = match.Glob(opts.Dir, opts.Globs, opts.Ignores)
	}
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		res.Messages = append(res.Messages, MsgNoFiles)
		return res, nil
	}
	res.Matched = files

	text, err := header.Text(holder, opts.License, strconv.Itoa(year))
	if err != nil {
		return nil, err
	}

	inChange := make(map[string]bool, len(changed))
	for _, p := range changed {
		inChange[filepath.ToSlash(p)] = true
	}

	type slot struct {
		action header.Action
		err    error
	}
	slots := make([]slot, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			action, err := fixFile(filepath.Join(opts.Dir, filepath.FromSlash(path)), header.Input{
				Path:         path,
				Header:       text,
				BlockComment: opts.BlockComment,
				UpdateYear:   opts.OnlyChanged || inChange[path],
				Year:         year,
			}, w)
			slots[i] = slot{action: action, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, s := range slots {
		path := files[i]
		switch {
		case s.err != nil:
			res.Warnings = append(res.Warnings, Warning{Path: path, Err: s.err})
		case s.action != header.Unchanged:
			res.Changed = append(res.Changed, Change{Path: path, Action: s.action})
			logger.Debug(ctx, "fixed header", slog.String("path", path), slog.String("action", s.action.String()))
		}
	}
	return res, nil
}

func fixFile(path string, in header.Input, w Writer) (header.Action, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return header.Unchanged, err
	}
	in.Content = string(b)
	out, err := header.Update(in)
	if err != nil {
		return header.Unchanged, err
	}
	if out.Action == header.Unchanged || out.Content == in.Content {
		return header.Unchanged, nil
	}
	if err := w.Write(path, b, []byte(out.Content)); err != nil {
		return header.Unchanged, err
	}
	return out.Action, nil
}

// Paths returns the paths of changes.
func Paths(changes []Change) []string {
	paths := make([]string, 0, len(changes))
	for _, c := range changes {
		paths = append(paths, c.Path)
	}
	return paths
}
