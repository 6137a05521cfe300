// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package header

import (
	"regexp"

	"github.com/go4org/hashtriemap"
)

// Building blocks shared by all patterns. Line terminators are the ones
// recognized by ECMAScript so that files with \r or U+2028 line breaks are
// handled the same way as \n.
const (
	newline    = `(?:\n|\r|\r\n|\x{2028}|\x{2029})`
	horizSpace = `[^\S\n\r\x{2028}\x{2029}]`
	notNewline = `[^\n\r\x{2028}\x{2029}]`
	copyright  = `\bCopyright\b` + notNewline + `*?\b(\d{4,})\b`

	// Block comment bodies never contain */, so a header can't span two
	// comments.
	blockBody      = `(?:[^*]|\*+[^*/])*?`
	blockLine      = `(?:[^*\n\r\x{2028}\x{2029}]|\*+[^*/\n\r\x{2028}\x{2029}])*?`
	blockCopyright = `\bCopyright\b` + blockLine + `\b(\d{4,})\b`
)

// Match is an existing copyright header found in a file.
type Match struct {
	// Start and End delimit the header: content[Start:End].
	Start, End int
	// Year is the copyright year of the header, empty if it was not captured.
	Year string
}

// Patterns holds the compiled regular expressions for one comment style.
type Patterns struct {
	header   *regexp.Regexp
	preamble *regexp.Regexp
	block    bool
}

type patternKey struct {
	prefix string
	block  bool
}

var cache hashtriemap.HashTrieMap[patternKey, *Patterns]

// PatternsFor returns the patterns for s. Compiled patterns are shared
// between callers.
func PatternsFor(s Style) *Patterns {
	key := patternKey{prefix: s.Prefix, block: s.Block}
	if p, ok := cache.Load(key); ok {
		return p
	}
	p, _ := cache.LoadOrStore(key, compile(key.prefix, key.block))
	return p
}

func lineComment(prefix string) string {
	return horizSpace + `*` + regexp.QuoteMeta(prefix) + notNewline + `*` + newline
}

func compile(prefix string, block bool) *Patterns {
	lc := lineComment(prefix)
	lineHeader := horizSpace + `*` + regexp.QuoteMeta(prefix) + notNewline + `*` +
		copyright + notNewline + `*` + newline + `(?:` + lc + `)*`
	blockComment := horizSpace + `*/\*[\s\S]*?\*/`

	p := &Patterns{block: block}
	if block {
		blockHeader := horizSpace + `*/\*` + blockBody + blockCopyright + blockBody + `\*+/` +
			horizSpace + `*` + newline + `?`
		p.header = regexp.MustCompile(`(?i)(?:` + lineHeader + `|` + blockHeader + `)`)
		p.preamble = regexp.MustCompile(`^(?:(?:` + lc + `)+|` + blockComment + `)`)
	} else {
		shebang := `#!` + notNewline + `*` + newline
		p.header = regexp.MustCompile(`(?i)` + lineHeader)
		p.preamble = regexp.MustCompile(`^(?:` + shebang + `)?(?:` + lc + `)+`)
	}
	return p
}

// FindHeader locates the first copyright header in content.
func (p *Patterns) FindHeader(content string) (Match, bool) {
	loc := p.header.FindStringSubmatchIndex(content)
	if loc == nil {
		return Match{}, false
	}
	m := Match{Start: loc[0], End: loc[1]}
	// Group 1 is the year of a line comment header, group 2 of a block one.
	for g := 1; g < len(loc)/2; g++ {
		if loc[2*g] >= 0 {
			m.Year = content[loc[2*g]:loc[2*g+1]]
			break
		}
	}
	return m, true
}

// FindPreamble reports the length of the leading shebang and description
// comments of content.
func (p *Patterns) FindPreamble(content string) (end int, ok bool) {
	loc := p.preamble.FindStringIndex(content)
	if loc == nil {
		return 0, false
	}
	return loc[1], true
}
