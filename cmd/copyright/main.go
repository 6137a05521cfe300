// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"cmp"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"go.astrophena.name/copyright/cli"
	"go.astrophena.name/copyright/internal/config"
	"go.astrophena.name/copyright/internal/fixer"
	"go.astrophena.name/copyright/internal/git"
	"go.astrophena.name/copyright/internal/github"
	"go.astrophena.name/copyright/internal/report"
	"go.astrophena.name/copyright/license"
	"go.astrophena.name/copyright/logger"
)

// errCheckFailed marks the error of a -check run that found files to fix.
var errCheckFailed = errors.New("copyright headers are out of date")

// branchPrefix starts the names of branches that -pr pushes.
const branchPrefix = "copyright-"

func main() { cli.Main(new(app)) }

type app struct {
	configPath  string
	dir         string
	license     string
	holder      string
	repo        string
	sha         string
	commits     int
	author      string
	onlyChanged optionalBool
	block       optionalBool
	check       bool
	reportPath  string
	commit      bool
	push        bool
	pr          bool
	base        string
	apiURL      string

	// httpClient is used for GitHub API calls; http.DefaultClient when nil.
	httpClient *http.Client
	// wroteLicense is set when the run created or rewrote the license file.
	wroteLicense bool
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.configPath, "config", config.DefaultFile, "Read configuration from `file`, relative to -dir. It may be missing.")
	fs.StringVar(&a.dir, "dir", ".", "Repository root `directory`.")
	fs.StringVar(&a.license, "license", "", "SPDX `identifier` of the license.")
	fs.StringVar(&a.holder, "holder", "", "Copyright `holder`; the repository owner by default.")
	fs.StringVar(&a.repo, "repo", "", "GitHub repository in `owner/name` form.")
	fs.StringVar(&a.sha, "sha", "", "Last pushed `commit`; HEAD by default.")
	fs.IntVar(&a.commits, "commits", 1, "Number of pushed commits.")
	fs.StringVar(&a.author, "author", "", "Commit author as `\"Name <email>\"`.")
	fs.Var(&a.onlyChanged, "only-changed", "Only fix files changed by the pushed commits.")
	fs.Var(&a.block, "block", "Use block comments where the language has them.")
	fs.BoolVar(&a.check, "check", false, "Don't write files, fail if any file needs a change.")
	fs.StringVar(&a.reportPath, "report", "", "Write an HTML report to `file`.")
	fs.BoolVar(&a.commit, "commit", false, "Commit the changes.")
	fs.BoolVar(&a.push, "push", false, "Push the commit.")
	fs.BoolVar(&a.pr, "pr", false, "Push the commit to a new branch and open a pull request.")
	fs.StringVar(&a.base, "base", "", "Base `branch` of the pull request; the current branch by default.")
	fs.StringVar(&a.apiURL, "api-url", "", "GitHub Enterprise `URL`; $GITHUB_API_URL by default, github.com when empty.")
}

func (a *app) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)
	if len(env.Args) > 0 {
		return errors.Wrapf(cli.ErrInvalidArgs, "unexpected arguments %q", env.Args)
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	var owner, name string
	if a.repo != "" {
		if owner, name, err = github.SplitRepo(a.repo); err != nil {
			return errors.Mark(err, cli.ErrInvalidArgs)
		}
	}
	if a.pr && a.repo == "" {
		return errors.Wrap(cli.ErrInvalidArgs, "-pr needs -repo")
	}
	var gh *github.Client
	if a.pr {
		if gh, err = a.githubClient(env); err != nil {
			return err
		}
	}

	if a.commit && !a.check {
		current, err := git.CurrentBranch(ctx, a.dir)
		if err != nil {
			return err
		}
		if strings.HasPrefix(current, branchPrefix) {
			fmt.Fprintf(env.Stdout, "Skipping branch %s created by a previous run\n", current)
			return nil
		}
	}

	var rec *logger.Recorder
	if l := logger.Get(ctx); a.reportPath != "" && !logger.IsDefault(l) {
		rec = logger.NewRecorder(logger.LevelVar(ctx))
		l.Attach(rec)
		defer l.Detach(rec)
	}

	var (
		w     fixer.Writer
		check *fixer.CheckWriter
	)
	if a.check {
		check = fixer.NewCheckWriter()
		w = check
	}

	id, msg, err := a.resolveLicense(ctx, cfg.License, check)
	if err != nil {
		return err
	}
	if msg != "" {
		fmt.Fprintln(env.Stdout, msg)
		return nil
	}

	res, err := fixer.FixHeaders(ctx, fixer.Options{
		Dir:          a.dir,
		License:      id,
		Holder:       cfg.CopyrightHolder,
		Owner:        owner,
		SHA:          a.sha,
		Commits:      a.commits,
		OnlyChanged:  cfg.OnlyChangedFiles(),
		BlockComment: cfg.BlockComment,
		Globs:        cfg.FileGlobs,
		Ignores:      cfg.IgnoreGlobs,
		Changes:      fixer.ChangeListerFunc(git.ChangedFiles),
		Writer:       w,
	})
	if err != nil {
		return err
	}

	for _, warn := range res.Warnings {
		if warn.Path == "" {
			logger.Warn(ctx, "run degraded", logger.Err(warn.Err))
			continue
		}
		logger.Warn(ctx, "file skipped", slog.String("path", warn.Path), logger.Err(warn.Err))
	}
	for _, m := range res.Messages {
		fmt.Fprintln(env.Stdout, m)
	}
	logger.Info(ctx, "headers checked",
		slog.String("license", id),
		slog.Int("matched", len(res.Matched)),
		slog.Int("changed", len(res.Changed)),
		slog.Int("warnings", len(res.Warnings)),
	)

	if a.reportPath != "" {
		s := report.Summary{
			Repo:    a.repo,
			License: id,
			Check:   a.check,
			Result:  res,
		}
		if rec != nil {
			s.Log = rec.Records()
		}
		if err := report.Write(ctx, a.reportPath, s); err != nil {
			return err
		}
	}

	if check != nil {
		if err := check.Err(); err != nil {
			return errors.Mark(err, errCheckFailed)
		}
		return nil
	}

	if !a.commit || (len(res.Changed) == 0 && !a.wroteLicense) {
		return nil
	}
	return a.persist(ctx, cfg, gh, owner, name, res)
}

// githubClient returns the client for opening pull requests, pointed at
// GitHub Enterprise when -api-url or $GITHUB_API_URL is set.
func (a *app) githubClient(env *cli.Env) (*github.Client, error) {
	c := github.New(a.httpClient, env.Getenv("GITHUB_TOKEN"))
	apiURL := cmp.Or(a.apiURL, env.Getenv("GITHUB_API_URL"))
	if apiURL == "" {
		return c, nil
	}
	c, err := c.WithBaseURL(apiURL)
	if err != nil {
		return nil, errors.Mark(err, cli.ErrInvalidArgs)
	}
	return c, nil
}

func (a *app) loadConfig() (*config.Config, error) {
	path := a.configPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.dir, path)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if a.license != "" {
		cfg.License = a.license
	}
	if a.holder != "" {
		cfg.CopyrightHolder = a.holder
	}
	if a.onlyChanged.set {
		cfg.OnlyChanged = &a.onlyChanged.val
	}
	if a.block.set {
		cfg.BlockComment = a.block.val
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveLicense returns the license to use. When there is none, it returns a
// message explaining why instead. A configured license has its license file
// written, or diffed into check when it is not nil.
func (a *app) resolveLicense(ctx context.Context, id string, check *fixer.CheckWriter) (string, string, error) {
	if id != "" {
		if check != nil {
			return id, "", a.checkLicenseFile(ctx, id, check)
		}
		path, changed, err := license.Ensure(a.dir, id)
		switch {
		case errors.Is(err, license.ErrNoText):
			logger.Warn(ctx, "no license text to write", slog.String("license", id))
		case err != nil:
			logger.Error(ctx, "writing license file failed", slog.String("license", id), logger.Err(err))
		case changed:
			a.wroteLicense = true
			logger.Info(ctx, "wrote license file", slog.String("path", path), slog.String("license", id))
		}
		return id, "", nil
	}

	name, ok, err := license.Find(a.dir)
	if err != nil {
		return "", "", err
	}
	if !ok {
		return "", "No license configured and no license file found", nil
	}
	b, err := os.ReadFile(filepath.Join(a.dir, name))
	if err != nil {
		logger.Warn(ctx, "reading license file failed", slog.String("path", name), logger.Err(err))
		return "", "No license configured and " + name + " could not be read", nil
	}
	id, ok = license.Match(string(b))
	if !ok {
		return "", "No license configured and no license found matching " + name + " file content", nil
	}
	logger.Debug(ctx, "inferred license", slog.String("path", name), slog.String("license", id))
	return id, "", nil
}

// checkLicenseFile records the license file as needing a change when it is
// missing or holds another license. It never writes it.
func (a *app) checkLicenseFile(ctx context.Context, id string, check *fixer.CheckWriter) error {
	f, err := license.Inspect(a.dir, id)
	switch {
	case errors.Is(err, license.ErrNoText):
		logger.Warn(ctx, "no license text to compare", slog.String("license", id))
		return nil
	case err != nil:
		logger.Error(ctx, "checking license file failed", slog.String("license", id), logger.Err(err))
		return nil
	case !f.Stale:
		return nil
	}
	logger.Info(ctx, "license file out of date", slog.String("path", f.Path), slog.String("license", id))
	return check.Write(f.Path, f.Content, []byte(f.Text))
}

func (a *app) persist(ctx context.Context, cfg *config.Config, gh *github.Client, owner, name string, res *fixer.Result) error {
	env := cli.GetEnv(ctx)

	current, err := git.CurrentBranch(ctx, a.dir)
	if err != nil {
		return err
	}
	base := cmp.Or(a.base, cfg.Branch, current)
	branch := cmp.Or(cfg.Branch, current)
	if a.pr {
		branch = branchPrefix + base
	}

	opts := git.CommitOptions{Message: cfg.Message()}
	if branch != current {
		opts.Branch = branch
	}
	if a.author != "" {
		addr, err := mail.ParseAddress(a.author)
		if err != nil {
			return errors.Mark(errors.Wrapf(err, "parsing -author %q", a.author), cli.ErrInvalidArgs)
		}
		opts.AuthorName, opts.AuthorEmail = addr.Name, addr.Address
	}

	committed, err := git.Commit(ctx, a.dir, opts)
	if err != nil {
		return err
	}
	if !committed {
		return nil
	}
	logger.Info(ctx, "committed changes", slog.String("branch", branch), slog.Int("files", len(res.Changed)))

	if !a.push && !a.pr {
		return nil
	}
	if err := git.Push(ctx, a.dir, "", branch); err != nil {
		return err
	}
	if !a.pr {
		return nil
	}

	title, body, _ := strings.Cut(cfg.Message(), "\n")
	url, err := gh.OpenPullRequest(ctx, github.PullRequest{
		Owner:  owner,
		Repo:   name,
		Head:   branch,
		Base:   base,
		Title:  title,
		Body:   a.pullRequestBody(strings.TrimSpace(body), res),
		Labels: cfg.Labels,
	})
	if url != "" {
		fmt.Fprintln(env.Stdout, url)
	}
	return err
}

func (a *app) pullRequestBody(intro string, res *fixer.Result) string {
	var sb strings.Builder
	if intro != "" {
		sb.WriteString(intro + "\n\n")
	}
	if a.wroteLicense {
		sb.WriteString("Wrote the license file.\n\n")
	}
	if len(res.Changed) > 0 {
		sb.WriteString("Updated copyright headers in " + strconv.Itoa(len(res.Changed)) + " files:\n\n")
	}
	for _, c := range res.Changed {
		fmt.Fprintf(&sb, "- `%s` (%s)\n", c.Path, c.Action)
	}
	return sb.String()
}

// optionalBool is a boolean flag that remembers whether it was set.
type optionalBool struct {
	set, val bool
}

func (b *optionalBool) String() string {
	if b == nil || !b.set {
		return ""
	}
	return strconv.FormatBool(b.val)
}

func (b *optionalBool) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	b.set, b.val = true, v
	return nil
}

func (b *optionalBool) IsBoolFlag() bool { return true }
