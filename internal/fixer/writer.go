// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package fixer

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/sergi/go-diff/diffmatchpatch"

	"go.astrophena.name/copyright/syncx"
)

// Writer persists the new content of a file. It is called concurrently for
// distinct paths.
type Writer interface {
	Write(path string, before, after []byte) error
}

// FSWriter writes files in place, keeping their permissions.
type FSWriter struct{}

// Write implements [Writer].
func (FSWriter) Write(path string, _, after []byte) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, after, fi.Mode().Perm())
}

// CheckWriter records a diff for every file instead of writing it.
type CheckWriter struct {
	differ *diffmatchpatch.DiffMatchPatch
	diffs  syncx.Protected[map[string][]diffmatchpatch.Diff]
}

// NewCheckWriter returns an empty [CheckWriter].
func NewCheckWriter() *CheckWriter {
	return &CheckWriter{
		differ: diffmatchpatch.New(),
		diffs:  syncx.Protect(make(map[string][]diffmatchpatch.Diff)),
	}
}

// Write implements [Writer].
func (c *CheckWriter) Write(path string, before, after []byte) error {
	if string(before) == string(after) {
		return nil
	}
	d := c.differ.DiffMain(string(before), string(after), false)
	c.diffs.WriteAccess(func(m map[string][]diffmatchpatch.Diff) {
		m[path] = d
	})
	return nil
}

// Paths returns the paths that would change, sorted.
func (c *CheckWriter) Paths() []string {
	var paths []string
	c.diffs.ReadAccess(func(m map[string][]diffmatchpatch.Diff) {
		paths = slices.Sorted(maps.Keys(m))
	})
	return paths
}

// Err returns an error listing the diffs of all files that would change, or
// nil if nothing would.
func (c *CheckWriter) Err() error {
	var msgs []string
	c.diffs.ReadAccess(func(m map[string][]diffmatchpatch.Diff) {
		for _, path := range slices.Sorted(maps.Keys(m)) {
			msgs = append(msgs, fmt.Sprintf("%s:\n%s", path, c.differ.DiffPrettyText(m[path])))
		}
	})
	if len(msgs) == 0 {
		return nil
	}
	return errors.New(strings.Join(msgs, "\n"))
}
