// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package config loads the repository configuration file.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"sigs.k8s.io/yaml"

	"go.astrophena.name/copyright/internal/match"
	"go.astrophena.name/copyright/license"
)

// DefaultFile is the configuration file looked up in the repository root.
const DefaultFile = ".copyright.yaml"

// DefaultCommitMessage is used when the configuration has no commit message.
const DefaultCommitMessage = "Copyright license fixes"

// Config is the repository configuration.
type Config struct {
	// License is the SPDX identifier of the repository license. When empty,
	// it is inferred from the license file.
	License string `json:"license,omitempty"`
	// CopyrightHolder defaults to the repository owner.
	CopyrightHolder string `json:"copyrightHolder,omitempty"`
	// FileGlobs select the files to fix; [match.DefaultGlob] when empty.
	FileGlobs []string `json:"fileGlobs,omitempty"`
	// IgnoreGlobs exclude files selected by FileGlobs.
	IgnoreGlobs []string `json:"ignoreGlobs,omitempty"`
	// OnlyChanged limits fixes to the files changed by the push. It is true
	// when unset.
	OnlyChanged   *bool  `json:"onlyChanged,omitempty"`
	BlockComment  bool   `json:"blockComment,omitempty"`
	CommitMessage string `json:"commitMessage,omitempty"`
	// Branch to commit to; the current branch when empty.
	Branch string   `json:"branch,omitempty"`
	Labels []string `json:"labels,omitempty"`
}

// Load reads the configuration from path. A missing file yields the zero
// configuration.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Parse parses a YAML or JSON configuration and validates it.
func Parse(b []byte) (*Config, error) {
	c := new(Config)
	if err := yaml.UnmarshalStrict(b, c); err != nil {
		return nil, errors.Wrap(err, "parsing configuration")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate reports every problem of the configuration at once.
func (c *Config) Validate() error {
	var errs []error
	if c.License != "" {
		if _, err := license.Lookup(c.License); err != nil {
			errs = append(errs, err)
		}
	}
	if err := match.Validate(c.FileGlobs...); err != nil {
		errs = append(errs, errors.Wrap(err, "fileGlobs"))
	}
	if err := match.Validate(c.IgnoreGlobs...); err != nil {
		errs = append(errs, errors.Wrap(err, "ignoreGlobs"))
	}
	return errors.Join(errs...)
}

// OnlyChangedFiles reports the effective onlyChanged setting.
func (c *Config) OnlyChangedFiles() bool {
	return c.OnlyChanged == nil || *c.OnlyChanged
}

// Message returns the effective commit message.
func (c *Config) Message() string {
	if c.CommitMessage == "" {
		return DefaultCommitMessage
	}
	return c.CommitMessage
}
