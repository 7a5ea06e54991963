// Package buildinfo carries version stamps injected with -ldflags, falling
// back to the VCS settings the Go toolchain embeds.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

var readBuildInfo = debug.ReadBuildInfo

// Short returns a compact identifier for the window title and logs.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if c := commit(); c != "" {
		return c
	}
	return "dev"
}

// String is the full --version line.
func String() string {
	c := commit()
	if c == "" {
		c = "unknown"
	}
	return fmt.Sprintf("%s (commit %s, built %s)", Version, c, Date)
}

func commit() string {
	if Commit != "" && Commit != "unknown" {
		return shorten(Commit)
	}
	bi, ok := readBuildInfo()
	if !ok {
		return ""
	}
	rev, dirty := "", false
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if rev == "" {
		return ""
	}
	rev = shorten(rev)
	if dirty {
		rev += "+dirty"
	}
	return rev
}

func shorten(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
