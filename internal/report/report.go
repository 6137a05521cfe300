// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package report renders an HTML summary of a header fixing run.
package report

//go:generate go tool templ generate

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/a-h/templ"
	"github.com/cockroachdb/errors"

	"go.astrophena.name/copyright/internal/fixer"
)

// Summary is what the report shows.
type Summary struct {
	Repo    string
	License string
	// Check is true when files were diffed instead of written.
	Check  bool
	Result *fixer.Result
	// Log holds the records logged during the run, if any were kept.
	Log []slog.Record
}

// Page returns the report as an HTML page.
func Page(s Summary) templ.Component {
	if s.Result == nil {
		s.Result = new(fixer.Result)
	}
	return page(s)
}

// Write renders the report of s to the file at path.
func Write(ctx context.Context, path string, s Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Page(s).Render(ctx, f); err != nil {
		f.Close()
		return errors.Wrapf(err, "rendering report to %s", path)
	}
	return f.Close()
}

func (s Summary) title() string {
	if s.Repo == "" {
		return "Copyright report"
	}
	return "Copyright report for " + s.Repo
}

func (s Summary) license() string {
	if s.License == "" {
		return "none"
	}
	return s.License
}

func (s Summary) mode() string {
	if s.Check {
		return "check"
	}
	return "write"
}

// attrs formats the attributes of r as space-separated key=value pairs.
func attrs(r slog.Record) string {
	var parts []string
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, a.String())
		return true
	})
	return strings.Join(parts, " ")
}
