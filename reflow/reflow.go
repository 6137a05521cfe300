// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package reflow wraps paragraphs of plain text to a target width.
//
// Only lines longer than the target are broken. Each break is placed at the
// whitespace before or after the target, whichever is cheaper: running past
// the target costs twice as much per character as stopping short of it.
// Continuation lines of a paragraph that starts with an indented list marker
// such as "  1. " or "  (a) " are indented to align with the marker's text.
package reflow

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultWidth is the width used when none is given.
const DefaultWidth = 72

const horizSpace = `[^\S\n\r\x{2028}\x{2029}]`

var markerRe = regexp.MustCompile(`^` + horizSpace + `+(?:(?:(?:\d+|[A-Z]+|[a-z]+)\.|\((?:\d+|[A-Z]+|[a-z]+)\))` + horizSpace + `*)?`)

// Default reflows text to DefaultWidth.
func Default(text string) string { return Reflow(text, DefaultWidth) }

// Reflow wraps the lines of text that are longer than width. Paragraphs are
// separated by blank lines; trailing whitespace of paragraphs is removed and
// empty paragraphs are dropped. A width of zero or less means DefaultWidth.
//
// Lengths are counted in runes. A word longer than the width is kept whole
// if it is followed by whitespace, so the result can have lines longer than
// width; a line without any whitespace before the target is cut at it.
func Reflow(text string, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	var paras []string
	for p := range strings.SplitSeq(text, "\n\n") {
		p = strings.TrimRightFunc(p, unicode.IsSpace)
		if p == "" {
			continue
		}
		paras = append(paras, paragraph(p, width))
	}
	return strings.Join(paras, "\n\n")
}

func paragraph(p string, width int) string {
	indent := len([]rune(markerRe.FindString(p)))
	var lines []string
	for line := range strings.SplitSeq(p, "\n") {
		cur := []rune(line)
		target := width
		for len(cur) > target {
			if len(lines) > 0 {
				target = max(width-indent, 1)
			}
			at := breakAt(cur, target)
			lines = append(lines, strings.TrimRightFunc(string(cur[:at]), unicode.IsSpace))
			cur = []rune(strings.TrimLeftFunc(string(cur[at:]), unicode.IsSpace))
		}
		if len(cur) > 0 {
			lines = append(lines, string(cur))
		}
	}
	return strings.Join(lines, "\n"+strings.Repeat(" ", indent))
}

// breakAt returns the index at which s should be split for the given
// target. The returned index may be greater than target.
func breakAt(s []rune, target int) int {
	if target >= len(s) {
		return len(s)
	}
	long := len(s)
	for i := target; i < len(s); i++ {
		if unicode.IsSpace(s[i]) {
			long = i
			break
		}
	}
	short := -1
	for i := target; i >= 0; i-- {
		if unicode.IsSpace(s[i]) {
			short = i
			break
		}
	}
	if long == 0 || short < 0 {
		return target
	}
	if (long-target)*2 < target-short {
		return long
	}
	return short
}
