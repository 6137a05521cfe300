// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package header

import (
	"embed"
	"strings"
	"text/template"
	"unicode"

	"github.com/cockroachdb/errors"

	"go.astrophena.name/copyright/license"
	"go.astrophena.name/copyright/reflow"
	"go.astrophena.name/copyright/syncx"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

var templates syncx.Lazy[*template.Template]

func parsedTemplates() (*template.Template, error) {
	return templates.GetErr(func() (*template.Template, error) {
		t, err := template.ParseFS(templatesFS, "templates/*.tmpl")
		return t, errors.Wrap(err, "parsing header templates")
	})
}

// templateFor returns the curated header template for an SPDX identifier, or
// nil if there is none.
func templateFor(id string) (*template.Template, error) {
	t, err := parsedTemplates()
	if err != nil {
		return nil, err
	}
	return t.Lookup(license.Canonical(id) + ".tmpl"), nil
}

// HasTemplate reports whether id has a curated header text.
func HasTemplate(id string) bool {
	t, err := templateFor(id)
	return err == nil && t != nil
}

// Text returns the plain text of the header for files licensed under the
// license with SPDX identifier id.
func Text(holder, id, year string) (string, error) {
	lic, err := license.Lookup(id)
	if err != nil {
		return "", err
	}

	tmpl, err := templateFor(lic.ID)
	if err != nil {
		return "", err
	}
	if tmpl != nil {
		var sb strings.Builder
		if err := tmpl.Execute(&sb, struct{ Year, Holder string }{year, holder}); err != nil {
			return "", errors.Wrapf(err, "rendering header for %s", lic.ID)
		}
		return strings.TrimRight(sb.String(), "\n"), nil
	}

	name := lic.Name
	if !strings.HasSuffix(strings.ToLower(name), "license") {
		name += " License"
	}
	return reflow.Default("Copyright © " + year + " " + holder + "\n\n" +
		"Licensed under the " + name + ";\n" +
		"you may not use this file except in compliance with the License."), nil
}

// Render turns header text into a comment in style s. Block comments are
// only used if block is set and the style supports them.
func Render(text string, s Style, block bool) string {
	if text == "" {
		return ""
	}
	block = block && s.Block
	lead := s.Lead
	if block {
		lead = " *"
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines)+2)
	if block {
		out = append(out, "/*")
	}
	for _, l := range lines {
		out = append(out, strings.TrimRightFunc(lead+" "+l, unicode.IsSpace))
	}
	if block {
		out = append(out, " */")
	}
	return strings.Join(out, "\n") + "\n"
}
