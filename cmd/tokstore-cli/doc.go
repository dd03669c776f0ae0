// Package main provides the entry point for tokstore-cli.
//
// The CLI opens the configured backend directly and runs one token store
// operation per invocation:
//
//   - Token issue, confirm, fetch and revoke
//   - Configuration display and validation
//   - Build information
//
// Usage:
//
//	tokstore-cli [global flags] command [flags] [args]
//	tokstore-cli --set session.adapter=file --set file.dir=/var/lib/tokstore token issue --generate-secret
//	tokstore-cli -c config.yaml token confirm --secret s3cr3t 01hx...
package main
