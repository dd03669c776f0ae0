// Package main provides the entry point for tokstore-server.
//
// The server exposes the token store over HTTP:
//
//   - Token storage, confirmation, fetch and revocation
//   - Health and readiness probes
//   - Prometheus metrics
//
// Usage:
//
//	tokstore-server [flags]
//	tokstore-server --config /path/to/config.yaml
//
// The backend is selected with session.adapter (memory, file, redis, none).
// With none the server answers every token request with NO_LOCAL_SESSION.
//
// Setting server.local.socket also serves the API on a Unix domain socket.
package main
