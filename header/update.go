// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package header

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNoStyle is returned by Update when the file extension has no
	// known comment style.
	ErrNoStyle = errors.New("extension matched no comment style")
	// ErrEmptyHeader is returned by Update when the rendered header is empty.
	ErrEmptyHeader = errors.New("rendered header is empty")
)

// Action describes what Update did to a file.
type Action int

const (
	Unchanged Action = iota
	Inserted
	Replaced
)

func (a Action) String() string {
	switch a {
	case Unchanged:
		return "unchanged"
	case Inserted:
		return "inserted"
	case Replaced:
		return "replaced"
	}
	return "Action(" + strconv.Itoa(int(a)) + ")"
}

// Input is the input of Update.
type Input struct {
	// Path is the file name; only its extension is used.
	Path string
	// Content is the current file content.
	Content string
	// Header is the plain header text, as returned by Text.
	Header string
	// BlockComment requests a /* */ header where the language has one.
	BlockComment bool
	// UpdateYear allows replacing an existing header with a stale year.
	// Otherwise files that already have a header are left alone.
	UpdateYear bool
	// Year is the current year. Zero means time.Now().Year().
	Year int
}

// Output is the result of Update.
type Output struct {
	Content string
	Action  Action
}

// Update returns the content of a file with its copyright header added or
// refreshed. When the file can't be handled, the content is returned
// unchanged together with ErrNoStyle or ErrEmptyHeader.
func Update(in Input) (Output, error) {
	unchanged := Output{Content: in.Content, Action: Unchanged}

	s, ok := StyleFor(filepath.Ext(in.Path))
	if !ok {
		return unchanged, errors.Wrapf(ErrNoStyle, "%s", in.Path)
	}
	hdr := Render(in.Header, s, in.BlockComment)
	if hdr == "" {
		return unchanged, errors.Wrapf(ErrEmptyHeader, "%s", in.Path)
	}

	year := in.Year
	if year == 0 {
		year = time.Now().Year()
	}

	p := PatternsFor(s)
	if m, ok := p.FindHeader(in.Content); ok {
		if m.Year == strconv.Itoa(year) || !in.UpdateYear {
			return unchanged, nil
		}
		content := in.Content[:m.Start] + hdr + in.Content[m.End:]
		if content == in.Content {
			return unchanged, nil
		}
		return Output{Content: content, Action: Replaced}, nil
	}

	if end, ok := p.FindPreamble(in.Content); ok {
		before := in.Content[:end]
		if strings.HasSuffix(before, "*/") {
			before += "\n"
		}
		var after string
		if rest := strings.TrimLeftFunc(in.Content[end:], unicode.IsSpace); rest != "" {
			after = "\n" + rest
		}
		return Output{Content: before + hdr + after, Action: Inserted}, nil
	}

	rest := strings.TrimLeftFunc(in.Content, unicode.IsSpace)
	if rest == "" {
		return Output{Content: hdr, Action: Inserted}, nil
	}
	return Output{Content: hdr + "\n" + rest, Action: Inserted}, nil
}
