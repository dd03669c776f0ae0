// Package shutdown runs graceful shutdown hooks on SIGINT or SIGTERM.
//
// Components register named hooks as they start; hooks run in reverse
// order so the HTTP server stops accepting requests before the token store
// releases its backend.
package shutdown
