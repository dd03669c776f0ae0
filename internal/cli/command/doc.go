// Package command provides CLI command definitions for tokstore-cli.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: Root command, global flags, store wiring
//   - token.go: Token subcommand group (issue, confirm, fetch, revoke)
//   - config.go: Configuration subcommand group (show, validate)
//   - version.go: Build information
//
// Commands open the configured backend directly, run one token store
// operation, release the backend and format the result.
package command
