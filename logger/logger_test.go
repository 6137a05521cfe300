// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	"go.astrophena.name/copyright/testutil"
)

func TestGet(t *testing.T) {
	ctx := context.Background()
	testutil.AssertEqual(t, IsDefault(Get(ctx)), true)
	testutil.AssertEqual(t, LevelVar(ctx).Level(), slog.LevelInfo)

	l := New(nil)
	ctx = Put(ctx, l)
	testutil.AssertEqual(t, IsDefault(Get(ctx)), false)
	if Get(ctx) != l {
		t.Fatal("Get returned another logger")
	}
	LevelVar(ctx).Set(slog.LevelDebug)
	testutil.AssertEqual(t, l.Level.Level(), slog.LevelDebug)
}

func TestAttachDetach(t *testing.T) {
	l := New(nil)
	ctx := Put(context.Background(), l)

	var first, second bytes.Buffer
	h1 := slog.NewTextHandler(&first, &slog.HandlerOptions{Level: l.Level})
	h2 := slog.NewTextHandler(&second, &slog.HandlerOptions{Level: l.Level})
	l.Attach(h1)
	l.Attach(h2)

	Info(ctx, "both")
	l.Detach(h2)
	Warn(ctx, "first only")
	Debug(ctx, "nobody")

	testutil.AssertEqual(t, strings.Count(first.String(), "msg="), 2)
	testutil.AssertEqual(t, strings.Count(second.String(), "msg="), 1)
	if strings.Contains(first.String(), "nobody") {
		t.Errorf("debug message logged at info level:\n%s", first.String())
	}
}

func TestErr(t *testing.T) {
	err := errors.Wrap(errors.New("boom"), "doing things")
	testutil.AssertEqual(t, Err(err).String(), "err=doing things: boom")
	testutil.AssertEqual(t, Err(nil).String(), "err=<nil>")
}

func TestRecorder(t *testing.T) {
	l := New(nil)
	ctx := Put(context.Background(), l)
	rec := NewRecorder(LevelVar(ctx))
	l.Attach(rec)

	Debug(ctx, "hidden")
	Info(ctx, "started", slog.Int("files", 3))
	l.With(slog.String("path", "main.go")).Warn("skipped")
	Error(ctx, "failed", Err(errors.New("boom")))
	l.Detach(rec)
	Info(ctx, "after detach")

	var got []string
	for _, r := range rec.Records() {
		line := r.Level.String() + " " + r.Message
		r.Attrs(func(a slog.Attr) bool {
			line += " " + a.String()
			return true
		})
		got = append(got, line)
	}
	testutil.AssertEqual(t, got, []string{
		"INFO started files=3",
		"WARN skipped path=main.go",
		"ERROR failed err=boom",
	})
}
