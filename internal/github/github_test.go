// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package github

import (
	"context"
	"io"
	"net/http"
	"testing"

	"go.astrophena.name/copyright/testutil"
)

type fakeGitHub struct {
	mux     *http.ServeMux
	created map[string]string
	labels  []string
	auth    string
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	f := &fakeGitHub{mux: http.NewServeMux()}
	f.mux.HandleFunc("POST /repos/acme/widgets/pulls", func(w http.ResponseWriter, r *http.Request) {
		f.auth = r.Header.Get("Authorization")
		b, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatal(err)
		}
		f.created = testutil.UnmarshalJSON[map[string]string](t, b)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"number": 7, "html_url": "https://github.com/acme/widgets/pull/7"}`)
	})
	f.mux.HandleFunc("POST /repos/acme/widgets/issues/7/labels", func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatal(err)
		}
		f.labels = testutil.UnmarshalJSON[[]string](t, b)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"name": "copyright"}]`)
	})
	f.mux.HandleFunc("POST /repos/acme/locked/pulls", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"message": "Validation Failed"}`)
	})
	return f
}

func TestOpenPullRequest(t *testing.T) {
	f := newFakeGitHub(t)
	c := New(testutil.MockHTTPClient(f.mux), "s3cr3t")

	url, err := c.OpenPullRequest(context.Background(), PullRequest{
		Owner:  "acme",
		Repo:   "widgets",
		Head:   "copyright-main",
		Base:   "main",
		Title:  "Copyright license fixes",
		Body:   "Adds missing headers.",
		Labels: []string{"copyright"},
	})
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, url, "https://github.com/acme/widgets/pull/7")
	testutil.AssertEqual(t, f.auth, "Bearer s3cr3t")
	testutil.AssertEqual(t, f.created, map[string]string{
		"title": "Copyright license fixes",
		"head":  "copyright-main",
		"base":  "main",
		"body":  "Adds missing headers.",
	})
	testutil.AssertEqual(t, f.labels, []string{"copyright"})
}

func TestOpenPullRequestWithoutLabels(t *testing.T) {
	f := newFakeGitHub(t)
	c := New(testutil.MockHTTPClient(f.mux), "")

	if _, err := c.OpenPullRequest(context.Background(), PullRequest{
		Owner: "acme",
		Repo:  "widgets",
		Head:  "fix",
		Base:  "main",
		Title: "Fix",
	}); err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, f.auth, "")
	if f.labels != nil {
		t.Fatalf("labels were added: %v", f.labels)
	}
}

func TestOpenPullRequestError(t *testing.T) {
	f := newFakeGitHub(t)
	c := New(testutil.MockHTTPClient(f.mux), "s3cr3t")

	if _, err := c.OpenPullRequest(context.Background(), PullRequest{
		Owner: "acme",
		Repo:  "locked",
		Head:  "fix",
		Base:  "main",
		Title: "Fix",
	}); err == nil {
		t.Fatal("OpenPullRequest succeeded on a rejected request")
	}
}

func TestSplitRepo(t *testing.T) {
	cases := map[string]struct {
		in              string
		wantOwner, want string
		wantErr         bool
	}{
		"valid":       {in: "acme/widgets", wantOwner: "acme", want: "widgets"},
		"no slash":    {in: "widgets", wantErr: true},
		"empty owner": {in: "/widgets", wantErr: true},
		"empty name":  {in: "acme/", wantErr: true},
		"too deep":    {in: "acme/widgets/extra", wantErr: true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			owner, repo, err := SplitRepo(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("SplitRepo(%q) succeeded", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			testutil.AssertEqual(t, owner, tc.wantOwner)
			testutil.AssertEqual(t, repo, tc.want)
		})
	}
}

func TestWithBaseURL(t *testing.T) {
	f := newFakeGitHub(t)
	var host string
	enterprise := http.NewServeMux()
	enterprise.HandleFunc("/api/v3/", func(w http.ResponseWriter, r *http.Request) {
		host = r.Host
		http.StripPrefix("/api/v3", f.mux).ServeHTTP(w, r)
	})

	c, err := New(testutil.MockHTTPClient(enterprise), "s3cr3t").WithBaseURL("https://github.example.com/")
	if err != nil {
		t.Fatal(err)
	}
	url, err := c.OpenPullRequest(context.Background(), PullRequest{
		Owner: "acme",
		Repo:  "widgets",
		Head:  "copyright-main",
		Base:  "main",
		Title: "Copyright license fixes",
	})
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, url, "https://github.com/acme/widgets/pull/7")
	testutil.AssertEqual(t, host, "github.example.com")
	testutil.AssertEqual(t, f.auth, "Bearer s3cr3t")

	if _, err := New(nil, "").WithBaseURL("://bad"); err == nil {
		t.Fatal("WithBaseURL accepted a malformed URL")
	}
}
