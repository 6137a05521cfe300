// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package version reports build information of the running binary.
package version

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
)

// Info describes a build.
type Info struct {
	// Name is the command name.
	Name string
	// Module is the main module version, "(devel)" for local builds.
	Module string
	// Commit is the VCS revision the binary was built from, if known.
	Commit string
	// Dirty reports whether the working tree had local modifications.
	Dirty bool
	// Go is the Go toolchain version.
	Go string
}

// String formats the build information for humans. It always ends with a
// newline.
func (i Info) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s", i.Name, i.Module)
	if i.Commit != "" {
		commit := i.Commit
		if len(commit) > 12 {
			commit = commit[:12]
		}
		fmt.Fprintf(&sb, " (%s", commit)
		if i.Dirty {
			sb.WriteString(", dirty")
		}
		sb.WriteString(")")
	}
	fmt.Fprintf(&sb, " built with %s\n", i.Go)
	return sb.String()
}

var info = sync.OnceValue(func() Info {
	i := Info{
		Name:   CmdName(),
		Module: "(devel)",
		Go:     runtime.Version(),
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return i
	}
	if v := bi.Main.Version; v != "" {
		i.Module = v
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			i.Commit = s.Value
		case "vcs.modified":
			i.Dirty = s.Value == "true"
		}
	}
	return i
})

// Version returns build information of the running binary.
func Version() Info { return info() }

// CmdName returns the base name of the running executable.
func CmdName() string {
	exe, err := os.Executable()
	if err != nil {
		return filepath.Base(os.Args[0])
	}
	return strings.TrimSuffix(filepath.Base(exe), ".exe")
}
