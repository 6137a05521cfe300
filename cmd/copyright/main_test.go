// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/tools/txtar"

	"go.astrophena.name/copyright/cli"
	"go.astrophena.name/copyright/cli/clitest"
	"go.astrophena.name/copyright/license"
	"go.astrophena.name/copyright/testutil"
)

var year = strconv.Itoa(time.Now().Year())

const tree = `
-- main.go --
package main
-- lib/util.py --
def util():
    pass
-- README.md --
# Widgets
`

// pullRequest is the last pull request received by the fake GitHub API.
var pullRequest map[string]string

func fakeGitHub(t *testing.T) *http.Client {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/acme/widgets/pulls", func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatal(err)
		}
		pullRequest = testutil.UnmarshalJSON[map[string]string](t, b)
		pullRequest["auth"] = r.Header.Get("Authorization")
		pullRequest["host"] = r.Host
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"number":   1,
			"html_url": "https://github.com/acme/widgets/pull/1",
		})
	})
	mux.Handle("/api/v3/", http.StripPrefix("/api/v3", mux))
	return testutil.MockHTTPClient(mux)
}

func gitRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return string(out)
}

// repoSetup returns a setup that creates a repository with licenseText in
// LICENSE (none when empty) and two commits, the last one changing main.go,
// and makes it the working directory.
func repoSetup(licenseText string) func(t *testing.T) *app {
	return func(t *testing.T) *app {
		if _, err := exec.LookPath("git"); err != nil {
			t.Skip("git is not installed")
		}

		remote := t.TempDir()
		gitRun(t, remote, "init", "--quiet", "--bare")

		dir := t.TempDir()
		testutil.ExtractTxtar(t, txtar.Parse([]byte(tree)), dir)
		if licenseText != "" {
			if err := os.WriteFile(filepath.Join(dir, "LICENSE"), []byte(licenseText), 0o644); err != nil {
				t.Fatal(err)
			}
		}
		if err := os.WriteFile(filepath.Join(dir, "copyright.json"), []byte(`{
  "license": "Apache-2.0",
  "copyrightHolder": "Config Holder",
  "onlyChanged": false,
  "ignoreGlobs": ["lib/**"]
}`), 0o644); err != nil {
			t.Fatal(err)
		}

		for _, args := range [][]string{
			{"init", "--quiet"},
			{"checkout", "--quiet", "-B", "main"},
			{"config", "user.name", "Test"},
			{"config", "user.email", "test@example.com"},
			{"config", "commit.gpgsign", "false"},
			{"remote", "add", "origin", remote},
			{"add", "--all"},
			{"commit", "--quiet", "--message", "Initial commit"},
		} {
			gitRun(t, dir, args...)
		}
		if err := os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		gitRun(t, dir, "commit", "--quiet", "--all", "--message", "Add main")

		t.Chdir(dir)
		pullRequest = nil
		return &app{httpClient: fakeGitHub(t)}
	}
}

func readFile(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func mitText(t *testing.T) string {
	t.Helper()
	l, err := license.Lookup("MIT")
	if err != nil {
		t.Fatal(err)
	}
	return l.Text
}

func TestRun(t *testing.T) {
	const mainGo = "\npackage main\n\nfunc main() {}\n"

	cases := map[string]clitest.Case[*app]{
		"infers license and fixes changed files": {
			Args: []string{"-holder", "E-Corp"},
			CheckFunc: func(t *testing.T, _ *app) {
				testutil.AssertEqual(t, readFile(t, "main.go"), "// Copyright © "+year+" E-Corp\n"+
					"//\n"+
					"// Licensed under the MIT License;\n"+
					"// you may not use this file except in compliance with the License.\n"+
					mainGo)
				testutil.AssertEqual(t, readFile(t, "lib/util.py"), "def util():\n    pass\n")
			},
		},
		"all files with owner as holder": {
			Args: []string{"-only-changed=false", "-repo", "acme/widgets"},
			CheckFunc: func(t *testing.T, _ *app) {
				if got := readFile(t, "lib/util.py"); !strings.HasPrefix(got, "# Copyright © "+year+" acme\n#\n") {
					t.Fatalf("lib/util.py has no header:\n%s", got)
				}
				testutil.AssertEqual(t, readFile(t, "README.md"), "# Widgets\n")
			},
		},
		"block comments": {
			Args: []string{"-holder", "E-Corp", "-block"},
			CheckFunc: func(t *testing.T, _ *app) {
				if got := readFile(t, "main.go"); !strings.HasPrefix(got, "/*\n * Copyright © "+year+" E-Corp\n") {
					t.Fatalf("main.go has no block header:\n%s", got)
				}
			},
		},
		"configuration file": {
			Args: []string{"-config", "copyright.json"},
			CheckFunc: func(t *testing.T, _ *app) {
				got := readFile(t, "main.go")
				if !strings.HasPrefix(got, "// Copyright © "+year+" Config Holder\n") || !strings.Contains(got, "Apache License, Version 2.0") {
					t.Fatalf("main.go has no Apache header:\n%s", got)
				}
				testutil.AssertEqual(t, readFile(t, "lib/util.py"), "def util():\n    pass\n")
				apache, err := license.Lookup("Apache-2.0")
				if err != nil {
					t.Fatal(err)
				}
				testutil.AssertEqual(t, readFile(t, "LICENSE"), apache.Text)
			},
		},
		"check": {
			Args:         []string{"-check", "-holder", "E-Corp"},
			WantErr:      errCheckFailed,
			WantInStderr: "headers checked",
			CheckFunc: func(t *testing.T, _ *app) {
				testutil.AssertEqual(t, readFile(t, "main.go"), "package main\n\nfunc main() {}\n")
			},
		},
		"report": {
			Args: []string{"-holder", "E-Corp", "-report", "report.html"},
			CheckFunc: func(t *testing.T, _ *app) {
				got := readFile(t, "report.html")
				if !strings.Contains(got, "<tr><td>main.go</td><td>inserted</td></tr>") {
					t.Fatalf("report misses main.go:\n%s", got)
				}
				if !strings.Contains(got, "<h2>Log</h2>") || !strings.Contains(got, "<td>headers checked</td>") {
					t.Fatalf("report misses the log:\n%s", got)
				}
			},
		},
		"unknown commit": {
			Args:         []string{"-holder", "E-Corp", "-sha", "deadbeef", "-report", "report.html"},
			WantInStderr: "run degraded",
			CheckFunc: func(t *testing.T, _ *app) {
				testutil.AssertEqual(t, readFile(t, "main.go"), "package main\n\nfunc main() {}\n")
				got := readFile(t, "report.html")
				testutil.AssertEqual(t, strings.Count(got, "listing changed files"), 2)
				for _, bad := range []string{"listing changed files failed", "path=&#34;&#34;", "file skipped"} {
					if strings.Contains(got, bad) {
						t.Errorf("report contains %q:\n%s", bad, got)
					}
				}
			},
		},
		"commit": {
			Args: []string{"-holder", "E-Corp", "-commit", "-author", "Bot <bot@example.com>"},
			CheckFunc: func(t *testing.T, _ *app) {
				testutil.AssertEqual(t, gitRun(t, ".", "log", "-1", "--format=%an <%ae>%n%s"), "Bot <bot@example.com>\nCopyright license fixes\n")
				testutil.AssertEqual(t, gitRun(t, ".", "status", "--porcelain"), "")
			},
		},
		"pull request": {
			Args:         []string{"-holder", "E-Corp", "-commit", "-pr", "-repo", "acme/widgets"},
			Env:          map[string]string{"GITHUB_TOKEN": "s3cr3t"},
			WantInStdout: "https://github.com/acme/widgets/pull/1\n",
			CheckFunc: func(t *testing.T, _ *app) {
				testutil.AssertEqual(t, strings.TrimSpace(gitRun(t, ".", "rev-parse", "--abbrev-ref", "HEAD")), "copyright-main")
				gitRun(t, ".", "ls-remote", "--exit-code", "origin", "refs/heads/copyright-main")
				testutil.AssertEqual(t, pullRequest["title"], "Copyright license fixes")
				testutil.AssertEqual(t, pullRequest["head"], "copyright-main")
				testutil.AssertEqual(t, pullRequest["base"], "main")
				testutil.AssertEqual(t, pullRequest["auth"], "Bearer s3cr3t")
				if !strings.Contains(pullRequest["body"], "- `main.go` (inserted)") {
					t.Fatalf("pull request body misses main.go:\n%s", pullRequest["body"])
				}
			},
		},
		"pull request to enterprise server": {
			Args:         []string{"-holder", "E-Corp", "-commit", "-pr", "-repo", "acme/widgets"},
			Env:          map[string]string{"GITHUB_API_URL": "https://github.example.com/api/v3"},
			WantInStdout: "https://github.com/acme/widgets/pull/1\n",
			CheckFunc: func(t *testing.T, _ *app) {
				testutil.AssertEqual(t, pullRequest["host"], "github.example.com")
				testutil.AssertEqual(t, pullRequest["head"], "copyright-main")
			},
		},
		"bad api url": {
			Args:    []string{"-commit", "-pr", "-repo", "acme/widgets", "-api-url", "://bad"},
			WantErr: cli.ErrInvalidArgs,
			CheckFunc: func(t *testing.T, _ *app) {
				testutil.AssertEqual(t, readFile(t, "main.go"), "package main\n\nfunc main() {}\n")
			},
		},
		"commit all files": {
			Args: []string{"-holder", "E-Corp", "-commit", "-only-changed=false"},
			CheckFunc: func(t *testing.T, _ *app) {
				testutil.AssertEqual(t, gitRun(t, ".", "show", "--name-only", "--format=%s", "HEAD"), "Copyright license fixes\n\nlib/util.py\nmain.go\n")
			},
		},
		"unknown license": {
			Args:    []string{"-license", "NOPE-1.0"},
			WantErr: license.ErrUnknownLicense,
		},
		"bad repository": {
			Args:    []string{"-repo", "widgets"},
			WantErr: cli.ErrInvalidArgs,
		},
		"pull request without repository": {
			Args:    []string{"-pr", "-commit"},
			WantErr: cli.ErrInvalidArgs,
		},
		"unexpected arguments": {
			Args:    []string{"main.go"},
			WantErr: cli.ErrInvalidArgs,
		},
	}

	clitest.Run(t, repoSetup(mitText(t)), cases)
}

func TestRunOnOwnBranch(t *testing.T) {
	setup := func(t *testing.T) *app {
		a := repoSetup(mitText(t))(t)
		gitRun(t, ".", "checkout", "--quiet", "-b", "copyright-main")
		return a
	}
	clitest.Run(t, setup, map[string]clitest.Case[*app]{
		"pull request": {
			Args:         []string{"-holder", "E-Corp", "-commit", "-pr", "-repo", "acme/widgets"},
			WantInStdout: "Skipping branch copyright-main created by a previous run\n",
			CheckFunc: func(t *testing.T, _ *app) {
				if pullRequest != nil {
					t.Fatalf("opened a pull request: %v", pullRequest)
				}
				testutil.AssertEqual(t, readFile(t, "main.go"), "package main\n\nfunc main() {}\n")
				testutil.AssertEqual(t, gitRun(t, ".", "log", "-1", "--format=%s"), "Add main\n")
				testutil.AssertEqual(t, strings.TrimSpace(gitRun(t, ".", "rev-parse", "--abbrev-ref", "HEAD")), "copyright-main")
			},
		},
		"check is still allowed": {
			Args:    []string{"-holder", "E-Corp", "-check"},
			WantErr: errCheckFailed,
		},
	})
}

func TestRunWithoutLicense(t *testing.T) {
	clitest.Run(t, repoSetup(""), map[string]clitest.Case[*app]{
		"no license file": {
			WantInStdout: "No license configured and no license file found\n",
			CheckFunc: func(t *testing.T, _ *app) {
				testutil.AssertEqual(t, readFile(t, "main.go"), "package main\n\nfunc main() {}\n")
			},
		},
	})
	clitest.Run(t, repoSetup("All rights reserved.\n"), map[string]clitest.Case[*app]{
		"unknown license file": {
			WantInStdout: "No license configured and no license found matching LICENSE file content\n",
		},
	})
	clitest.Run(t, repoSetup(""), map[string]clitest.Case[*app]{
		"license flag writes the license file": {
			Args: []string{"-license", "MIT", "-holder", "E-Corp"},
			CheckFunc: func(t *testing.T, _ *app) {
				testutil.AssertEqual(t, readFile(t, "LICENSE"), mitText(t))
				if got := readFile(t, "main.go"); !strings.HasPrefix(got, "// Copyright © "+year+" E-Corp\n") {
					t.Fatalf("main.go has no header:\n%s", got)
				}
			},
		},
		"check does not write the license file": {
			Args:         []string{"-license", "MIT", "-holder", "E-Corp", "-check"},
			WantErr:      errCheckFailed,
			WantInStderr: "license file out of date",
			CheckFunc: func(t *testing.T, _ *app) {
				if _, err := os.Stat("LICENSE"); !errors.Is(err, os.ErrNotExist) {
					t.Fatalf("LICENSE was written: %v", err)
				}
				testutil.AssertEqual(t, readFile(t, "main.go"), "package main\n\nfunc main() {}\n")
			},
		},
	})
	clitest.Run(t, repoSetup(mitText(t)), map[string]clitest.Case[*app]{
		"check keeps another license file": {
			Args:    []string{"-license", "Apache-2.0", "-holder", "E-Corp", "-check", "-only-changed=false"},
			WantErr: errCheckFailed,
			CheckFunc: func(t *testing.T, _ *app) {
				testutil.AssertEqual(t, readFile(t, "LICENSE"), mitText(t))
			},
		},
	})
}
