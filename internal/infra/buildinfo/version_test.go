package buildinfo

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
)

func withBuildInfo(t *testing.T, settings ...debug.BuildSetting) {
	t.Helper()
	orig := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Settings: settings}, true
	}
	t.Cleanup(func() { readBuildInfo = orig })
}

func withCommit(t *testing.T, commit string) {
	t.Helper()
	orig := Commit
	Commit = commit
	t.Cleanup(func() { Commit = orig })
}

func TestGet_Defaults(t *testing.T) {
	withCommit(t, "")
	withBuildInfo(t)

	info := Get()
	if info.Version == "" {
		t.Error("Version should not be empty")
	}
	if info.Commit != "unknown" {
		t.Errorf("Commit = %q, want unknown", info.Commit)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
}

func TestGet_VCSFallback(t *testing.T) {
	withCommit(t, "")
	withBuildInfo(t,
		debug.BuildSetting{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		debug.BuildSetting{Key: "vcs.modified", Value: "true"},
	)

	info := Get()
	if info.Commit != "0123456789ab" {
		t.Errorf("Commit = %q, want truncated vcs revision", info.Commit)
	}
	if !info.Modified {
		t.Error("Modified should be true")
	}
	if !strings.Contains(info.String(), "-dirty") {
		t.Errorf("String() = %q, want dirty marker", info.String())
	}
}

func TestGet_InjectedCommitWins(t *testing.T) {
	withCommit(t, "abc123")
	withBuildInfo(t, debug.BuildSetting{Key: "vcs.revision", Value: "ffffffff"})

	if got := Get().Commit; got != "abc123" {
		t.Errorf("Commit = %q, want abc123", got)
	}
}

func TestUserAgent(t *testing.T) {
	if got := UserAgent("tokstore-cli"); got != "tokstore-cli/"+Version {
		t.Errorf("UserAgent() = %q", got)
	}
}
