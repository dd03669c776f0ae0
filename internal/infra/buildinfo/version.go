package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Build-time variables (set via ldflags).
var (
	// Version is the semantic version.
	Version = "dev"

	// Commit is the git commit hash.
	Commit = ""

	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// readBuildInfo is a hook for testing.
var readBuildInfo = debug.ReadBuildInfo

// Info contains build information.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Modified  bool   `json:"modified,omitempty"`
}

// Get returns the build information.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}

	if bi, ok := readBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = s.Value
				}
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}
	}
	if info.Commit == "" {
		info.Commit = "unknown"
	}
	if len(info.Commit) > 12 {
		info.Commit = info.Commit[:12]
	}
	return info
}

// String returns a formatted version string.
func (i Info) String() string {
	dirty := ""
	if i.Modified {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s) built at %s with %s", i.Version, i.Commit, dirty, i.BuildTime, i.GoVersion)
}

// UserAgent returns the product token used by outbound clients.
func UserAgent(component string) string {
	return fmt.Sprintf("%s/%s", component, Version)
}
