// Package buildinfo reports the version TokStore was built as.
//
// Version, Commit and BuildTime are injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/tokstore/internal/infra/buildinfo.Version=v1.0.0"
//
// When Commit is not injected it falls back to the VCS revision embedded by
// the Go toolchain.
package buildinfo
