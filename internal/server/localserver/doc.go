// Package localserver serves the token API on a Unix domain socket.
//
// The socket is created with mode 0600, so access is controlled by file
// system permissions. A stale socket left behind by a crashed process is
// removed on startup; a socket that still accepts connections is reported
// as in use.
package localserver
