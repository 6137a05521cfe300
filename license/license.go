// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package license provides a corpus of SPDX licenses and helpers to find,
// recognize and write license files of a repository.
package license

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"
	"sigs.k8s.io/yaml"

	"go.astrophena.name/copyright/syncx"
)

var (
	// ErrUnknownLicense is returned for identifiers missing from the corpus.
	ErrUnknownLicense = errors.New("unknown license")
	// ErrNoText is returned when the corpus has no full text for a license.
	ErrNoText = errors.New("no license text")
)

// Threshold is the similarity a license file must exceed to be recognized.
const Threshold = 0.99

// DefaultFile is the name of the license file created when a repository
// has none.
const DefaultFile = "LICENSE"

// License describes an SPDX license.
type License struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	OSIApproved bool   `json:"osiApproved"`
	// Text is the full license text, empty if the corpus doesn't carry it.
	Text string `json:"-"`
}

var (
	//go:embed spdx.yaml
	spdxYAML []byte
	//go:embed text/*.txt
	textFS embed.FS
)

// aliases maps SPDX identifiers to the identifier they share a text and a
// header with.
var aliases = map[string]string{
	"AGPL-3.0-only":     "AGPL-3.0",
	"AGPL-3.0-or-later": "AGPL-3.0",
	"GPL-1.0+":          "GPL-1.0",
	"GPL-1.0-only":      "GPL-1.0",
	"GPL-1.0-or-later":  "GPL-1.0",
	"GPL-2.0+":          "GPL-2.0",
	"GPL-2.0-only":      "GPL-2.0",
	"GPL-2.0-or-later":  "GPL-2.0",
	"GPL-3.0+":          "GPL-3.0",
	"GPL-3.0-only":      "GPL-3.0",
	"GPL-3.0-or-later":  "GPL-3.0",
	"LGPL-2.0+":         "LGPL-2.0",
	"LGPL-2.0-only":     "LGPL-2.0",
	"LGPL-2.0-or-later": "LGPL-2.0",
	"LGPL-2.1+":         "LGPL-2.1",
	"LGPL-2.1-only":     "LGPL-2.1",
	"LGPL-2.1-or-later": "LGPL-2.1",
	"LGPL-3.0+":         "LGPL-3.0",
	"LGPL-3.0-only":     "LGPL-3.0",
	"LGPL-3.0-or-later": "LGPL-3.0",
}


// Canonical returns the identifier that id shares its text with: the plain
// form of -only, -or-later and + variants, and id itself otherwise.
func Canonical(id string) string {
	if c, ok := aliases[id]; ok {
		return c
	}
	return id
}

type corpus struct {
	byID map[string]License
	ids  []string
	// squashed holds whitespace-free texts for matching, keyed by id.
	squashed map[string]string
}

var lazyCorpus syncx.Lazy[*corpus]

func load() *corpus {
	return lazyCorpus.Get(func() *corpus {
		c, err := parse(spdxYAML, textFS)
		if err != nil {
			panic(err)
		}
		return c
	})
}

func parse(index []byte, texts fs.FS) (*corpus, error) {
	var list []License
	if err := yaml.Unmarshal(index, &list); err != nil {
		return nil, errors.Wrap(err, "parsing license index")
	}
	c := &corpus{
		byID:     make(map[string]License, len(list)),
		squashed: make(map[string]string),
	}
	for _, l := range list {
		if _, dup := c.byID[l.ID]; dup {
			return nil, errors.Newf("duplicate license %q", l.ID)
		}
		// Variants share the text of their canonical license and are never
		// the result of Match.
		b, err := fs.ReadFile(texts, "text/"+Canonical(l.ID)+".txt")
		switch {
		case err == nil:
			l.Text = string(b)
			if Canonical(l.ID) == l.ID {
				c.squashed[l.ID] = squash(l.Text)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return nil, errors.Wrapf(err, "reading text of %s", l.ID)
		}
		c.byID[l.ID] = l
		c.ids = append(c.ids, l.ID)
	}
	slices.Sort(c.ids)
	return c, nil
}

// Lookup returns the license with SPDX identifier id.
func Lookup(id string) (License, error) {
	l, ok := load().byID[id]
	if !ok {
		return License{}, errors.Wrapf(ErrUnknownLicense, "%q", id)
	}
	return l, nil
}

// IDs returns the identifiers of all known licenses in sorted order.
func IDs() []string { return slices.Clone(load().ids) }

// Match recognizes the license that text is the full text of. The most
// similar license of the corpus is only accepted if its Sørensen-Dice
// similarity to text exceeds Threshold. Whitespace and letter case are
// ignored.
func Match(text string) (id string, ok bool) {
	s := squash(text)
	if s == "" {
		return "", false
	}
	c := load()
	dice := metrics.NewSorensenDice()
	dice.CaseSensitive = false
	var best float64
	for _, candidate := range c.ids {
		t, has := c.squashed[candidate]
		if !has {
			continue
		}
		if sim := strutil.Similarity(s, t, dice); sim > best {
			best, id = sim, candidate
		}
	}
	if best > Threshold {
		return id, true
	}
	return "", false
}

func squash(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), "")
}

// Find returns the name of the first license file in dir. A license file is
// a regular file named "license" or "license.<ext>" in any letter case.
func Find(dir string) (name string, ok bool, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false, errors.Wrapf(err, "looking for license file in %s", dir)
	}
	// ReadDir returns entries sorted by file name.
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if matched, _ := doublestar.Match("{license,license.*}", strings.ToLower(e.Name())); matched {
			return e.Name(), true, nil
		}
	}
	return "", false, nil
}

// File is the state of the license file of a repository with respect to a
// license.
type File struct {
	// Path is the license file, or the file to create when there is none.
	Path string
	// Content is the current content; nil when the file doesn't exist.
	Content []byte
	// Text is the license text the file should have.
	Text string
	// Stale reports whether the file is missing or holds another license.
	Stale bool
}

// Inspect reports whether dir has a license file with the text of license
// id, without changing anything. An existing file that Match recognizes as
// id or one of its variants is up to date.
func Inspect(dir, id string) (File, error) {
	l, err := Lookup(id)
	if err != nil {
		return File{}, err
	}
	if l.Text == "" {
		return File{}, errors.Wrapf(ErrNoText, "%s", id)
	}

	name, found, err := Find(dir)
	if err != nil {
		return File{}, err
	}
	if !found {
		return File{Path: filepath.Join(dir, DefaultFile), Text: l.Text, Stale: true}, nil
	}

	f := File{Path: filepath.Join(dir, name), Text: l.Text}
	if f.Content, err = os.ReadFile(f.Path); err != nil {
		return File{}, errors.Wrapf(err, "reading %s", f.Path)
	}
	got, ok := Match(string(f.Content))
	f.Stale = !ok || got != Canonical(id)
	return f, nil
}

// Ensure makes sure that dir has a license file with the text of license
// id. An existing license file is kept when its text already matches id and
// overwritten otherwise. When dir has no license file, DefaultFile is
// created. Ensure returns the path of the license file and whether it was
// written.
func Ensure(dir, id string) (path string, changed bool, err error) {
	f, err := Inspect(dir, id)
	if err != nil {
		return "", false, err
	}
	if !f.Stale {
		return f.Path, false, nil
	}
	if err := os.WriteFile(f.Path, []byte(f.Text), 0o644); err != nil {
		return "", false, errors.Wrapf(err, "writing %s", f.Path)
	}
	return f.Path, true, nil
}
