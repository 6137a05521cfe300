// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package clitest runs table tests against [cli.App] implementations.
package clitest

import (
	"bytes"
	"context"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	"go.astrophena.name/copyright/cli"
)

// Case is a single invocation of an app and its expected outcome.
type Case[T cli.App] struct {
	// Args are the command-line arguments.
	Args []string
	// Stdin is the standard input; empty when nil.
	Stdin io.Reader
	// Env holds environment variables visible through Getenv.
	Env map[string]string

	// WantErr is matched with errors.Is.
	WantErr error
	// WantErrType is matched with errors.As against its dynamic type.
	WantErrType error
	// WantNothingPrinted requires empty stdout and stderr.
	WantNothingPrinted bool
	// WantInStdout and WantInStderr must be substrings of the output.
	WantInStdout string
	WantInStderr string
	// CheckFunc runs after the app, for checks the fields above can't express.
	CheckFunc func(*testing.T, T)
}

// Run runs every case against a fresh app returned by setup.
func Run[T cli.App](t *testing.T, setup func(*testing.T) T, cases map[string]Case[T]) {
	t.Helper()
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			app := setup(t)

			var stdout, stderr bytes.Buffer
			stdin := tc.Stdin
			if stdin == nil {
				stdin = strings.NewReader("")
			}
			env := &cli.Env{
				Args:   tc.Args,
				Getenv: func(key string) string { return tc.Env[key] },
				Stdin:  stdin,
				Stdout: &stdout,
				Stderr: &stderr,
			}

			err := cli.Run(cli.WithEnv(context.Background(), env), app)

			switch {
			case tc.WantErr != nil:
				if !errors.Is(err, tc.WantErr) {
					t.Fatalf("got error %v, want %v", err, tc.WantErr)
				}
			case tc.WantErrType != nil:
				target := reflect.New(reflect.TypeOf(tc.WantErrType))
				if !errors.As(err, target.Interface()) {
					t.Fatalf("got error %v, want one of type %T", err, tc.WantErrType)
				}
			case err != nil:
				t.Fatalf("unexpected error: %v\nstderr:\n%s", err, stderr.String())
			}

			if tc.WantNothingPrinted && (stdout.Len() > 0 || stderr.Len() > 0) {
				t.Errorf("want nothing printed, got stdout %q and stderr %q", stdout.String(), stderr.String())
			}
			if tc.WantInStdout != "" && !strings.Contains(stdout.String(), tc.WantInStdout) {
				t.Errorf("stdout must contain %q, got %q", tc.WantInStdout, stdout.String())
			}
			if tc.WantInStderr != "" && !strings.Contains(stderr.String(), tc.WantInStderr) {
				t.Errorf("stderr must contain %q, got %q", tc.WantInStderr, stderr.String())
			}
			if tc.CheckFunc != nil {
				tc.CheckFunc(t, app)
			}
		})
	}
}
