// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package match selects repository files by glob patterns.
//
// Patterns use the doublestar syntax: "**" matches any number of path
// segments and "{a,b}" matches either alternative. Paths are slash-separated
// and relative to the repository root. Files and directories whose name
// starts with a dot are never selected.
package match

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"

	"go.astrophena.name/copyright/header"
)

// ErrBadPattern is returned for malformed glob patterns.
var ErrBadPattern = errors.New("bad glob pattern")

// DefaultGlob returns the pattern that selects every file with a known
// comment style.
func DefaultGlob() string {
	return "**/*.{" + strings.Join(header.Extensions(), ",") + "}"
}

// Validate checks that all patterns are well-formed.
func Validate(patterns ...string) error {
	var errs []error
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			errs = append(errs, errors.Wrapf(ErrBadPattern, "%q", p))
		}
	}
	return errors.Join(errs...)
}

// Glob returns the files under dir selected by globs and not excluded by
// ignores, sorted by path.
func Glob(dir string, globs, ignores []string) ([]string, error) {
	m, err := newMatcher(globs, ignores)
	if err != nil {
		return nil, err
	}
	var files []string
	err = fs.WalkDir(os.DirFS(dir), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == "." {
			return nil
		}
		if hidden(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && m.match(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", dir)
	}
	slices.Sort(files)
	return files, nil
}

// Filter returns the paths selected by globs and not excluded by ignores,
// in their original order and without duplicates.
func Filter(paths, globs, ignores []string) ([]string, error) {
	m, err := newMatcher(globs, ignores)
	if err != nil {
		return nil, err
	}
	var (
		out  []string
		seen = make(map[string]bool)
	)
	for _, p := range paths {
		p = filepath.ToSlash(p)
		if seen[p] || slices.ContainsFunc(strings.Split(p, "/"), hidden) {
			continue
		}
		seen[p] = true
		if m.match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

type matcher struct {
	globs, ignores []string
}

func newMatcher(globs, ignores []string) (*matcher, error) {
	if len(globs) == 0 {
		globs = []string{DefaultGlob()}
	}
	if err := Validate(slices.Concat(globs, ignores)...); err != nil {
		return nil, err
	}
	return &matcher{globs: globs, ignores: ignores}, nil
}

func (m *matcher) match(path string) bool {
	return matchAny(m.globs, path) && !matchAny(m.ignores, path)
}

func matchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		// Patterns are validated up front.
		if ok, _ := doublestar.Match(p, path); ok {
			return true
		}
	}
	return false
}

func hidden(name string) bool { return strings.HasPrefix(name, ".") && name != "." && name != ".." }
