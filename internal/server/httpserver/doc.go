// Package httpserver exposes the token store over HTTP using stdlib net/http.
//
// Endpoints:
//
//   - Token endpoints: /tokens, /tokens/{key}, /tokens/{key}/confirm, /tokens/revoke
//   - Health endpoints: /health, /ready, /metrics
//
// Every route runs the same middleware chain (request ID, access log,
// request metrics, panic recovery); confirm adds per-IP rate limiting.
package httpserver
