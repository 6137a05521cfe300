// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package header

import (
	"slices"
	"strings"
)

// Style describes the comment syntax of a family of languages.
type Style struct {
	// Family is a human readable name of the family.
	Family string
	// Prefix is the line comment token used to recognize comments.
	Prefix string
	// Lead is the token written in front of each rendered header line.
	Lead string
	// Block reports whether the family also has /* ... */ comments.
	Block bool
	// Extensions lists file extensions (without the dot) of the family.
	Extensions []string
}

var styles = []Style{
	{
		Family: "C",
		Prefix: "//",
		Lead:   "//",
		Block:  true,
		Extensions: []string{
			"c", "cc", "cjs", "cpp", "cs", "cxx", "dart", "go", "gradle",
			"groovy", "h", "hpp", "java", "js", "jsx", "kt", "kts", "m",
			"mjs", "php", "rs", "scala", "swift", "ts", "tsx",
		},
	},
	{
		Family:     "Lisp",
		Prefix:     ";",
		Lead:       ";;",
		Extensions: []string{"cl", "clj", "cljs", "edn", "el", "lisp", "lsp", "scm"},
	},
	{
		Family: "Script",
		Prefix: "#",
		Lead:   "#",
		Extensions: []string{
			"bash", "csh", "ksh", "pl", "py", "r", "rb", "sh", "tcsh", "tf",
			"toml", "yaml", "yml", "zsh",
		},
	},
	{
		Family:     "SQL",
		Prefix:     "--",
		Lead:       "--",
		Extensions: []string{"hs", "lua", "sql"},
	},
}

// byExt maps an extension to its style. It is built once and never
// modified afterwards.
var byExt = func() map[string]Style {
	m := make(map[string]Style)
	for _, s := range styles {
		for _, ext := range s.Extensions {
			if _, dup := m[ext]; dup {
				panic("header: extension " + ext + " belongs to more than one style")
			}
			m[ext] = s
		}
	}
	return m
}()

// StyleFor returns the comment style for a file extension. The extension may
// be given with or without the leading dot.
func StyleFor(ext string) (Style, bool) {
	s, ok := byExt[strings.TrimPrefix(ext, ".")]
	return s, ok
}

// Extensions returns all recognized extensions in sorted order.
func Extensions() []string {
	exts := make([]string, 0, len(byExt))
	for ext := range byExt {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}
