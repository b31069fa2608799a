// Package version reports build information for /api/version and the CLIs.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Set via -ldflags "-X findash/internal/version.Version=..." at build time
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Name is the product name shown in banners
const Name = "findash"

// Info contains version and build information
type Info struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	BuildTime   string `json:"buildTime"`
	GoVersion   string `json:"goVersion"`
	Module      string `json:"module,omitempty"`
	VCSRevision string `json:"vcsRevision,omitempty"`
	VCSTime     string `json:"vcsTime,omitempty"`
	VCSModified bool   `json:"vcsModified"`
}

// Get returns the current version and build information
func Get() Info {
	info := Info{
		Name:      Name,
		Version:   Version,
		BuildTime: BuildTime,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		info.Module = bi.Main.Path

		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				info.VCSRevision = s.Value
			case "vcs.time":
				info.VCSTime = s.Value
			case "vcs.modified":
				info.VCSModified = s.Value == "true"
			}
		}
	}

	return info
}

// Short returns "findash <version> (<rev>)" for banners
func (i Info) Short() string {
	s := i.Name + " " + i.Version
	if rev := i.revision(); rev != "" {
		s += " (" + rev + ")"
	}
	return s
}

// String returns a human-readable version string
func (i Info) String() string {
	parts := []string{fmt.Sprintf("%s %s", i.Name, i.Version)}
	if i.BuildTime != "unknown" {
		parts = append(parts, "built "+i.BuildTime)
	}
	if i.GoVersion != "" {
		parts = append(parts, i.GoVersion)
	}
	if rev := i.revision(); rev != "" {
		parts = append(parts, "commit "+rev)
	}
	return strings.Join(parts, ", ")
}

// Check returns a warning for dirty or untracked builds, or ""
func (i Info) Check() string {
	if i.VCSModified {
		return "binary built from modified source tree"
	}
	if i.VCSRevision == "" && i.Version == "dev" {
		return "no version control information available (development build)"
	}
	return ""
}

func (i Info) revision() string {
	rev := i.VCSRevision
	if len(rev) > 8 {
		rev = rev[:8]
	}
	if rev != "" && i.VCSModified {
		rev += "-dirty"
	}
	return rev
}
