// Package output provides output formatting for tokstore-cli.
//
// This package handles all CLI output formatting:
//
//   - formatter.go: Formatter interface and factory
//   - table.go: key/value and tabular rendering
//   - json.go: JSON output formatting
//   - yaml.go: YAML output formatting
//
// JSON and YAML output go through each value's JSON encoding, so tokens
// render as the same flat object the store persists.
package output
