// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Copyright keeps the copyright headers and the license file of a repository up
to date.

It inserts a license header into every selected source file that lacks one
and refreshes the year of existing headers in files changed by the last push.
The header is written in the comment syntax of the file, chosen by its
extension. Shebang lines and leading comments stay on top.

The license is taken from the -license flag or the configuration file. When
neither sets it, the license file of the repository (LICENSE, LICENSE.md and
so on) is compared with the known license texts; a run without a recognized
license does nothing.

The configuration file, .copyright.yaml in the repository root by default,
may contain:

	license: Apache-2.0           # SPDX identifier
	copyrightHolder: E-Corp       # defaults to the owner from -repo
	fileGlobs: ["*.go", "cmd/**"] # defaults to every known extension
	ignoreGlobs: ["vendor/**"]
	onlyChanged: true             # only touch files changed by the push
	blockComment: false           # use block comments where the language allows them
	commitMessage: Copyright license fixes
	branch: main                  # branch to commit to
	labels: [copyright]           # pull request labels

Flags override the configuration file.

With -check, files are left alone, the license file included, and the run
fails with a diff of every file that needs a change. With -commit, the changes
are committed; -push pushes them and -pr pushes them to a copyright-{branch}
branch and opens a pull request against the base branch. Runs with -commit on
a copyright-{branch} branch do nothing. Opening pull requests needs a token in
the GITHUB_TOKEN environment variable; -api-url or GITHUB_API_URL points them
at a GitHub Enterprise server.

With -report, an HTML summary of the run and its log is written to a file.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/copyright/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
