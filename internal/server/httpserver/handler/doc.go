// Package handler provides HTTP request handlers for TokStore.
//
// This package contains handlers for all HTTP endpoints:
//
//   - token.go: store, fetch, confirm and delete
//   - health.go: liveness and readiness checks
//
// All handlers follow a consistent pattern:
//
//   - Parse and validate request
//   - Call the token store
//   - Format and return response
//   - Map domain errors to HTTP status codes
package handler
