package localserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"
)

// socketMode restricts the socket to the owning user.
const socketMode = 0o600

// Server serves an http.Handler on a Unix domain socket.
type Server struct {
	path     string
	srv      *http.Server
	listener net.Listener
	running  atomic.Bool
}

// New creates a local server for socketPath.
func New(socketPath string, handler http.Handler) *Server {
	return &Server{
		path: socketPath,
		srv: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Path returns the socket path.
func (s *Server) Path() string { return s.path }

// Listen creates the socket. It is called by ListenAndServe and may be
// called earlier to surface bind errors before serving.
func (s *Server) Listen() error {
	if s.listener != nil {
		return nil
	}
	l, err := Listen(s.path)
	if err != nil {
		return err
	}
	s.listener = l
	return nil
}

// ListenAndServe serves until Shutdown. It returns nil after Shutdown.
func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	s.running.Store(true)
	err := s.srv.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) || !s.running.Load() {
		return nil
	}
	return err
}

// Shutdown stops accepting connections, drains active requests and
// removes the socket file.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)
	err := s.srv.Shutdown(ctx)
	if s.listener != nil {
		// Serve may not have started yet.
		s.listener.Close()
	}
	if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
		err = rmErr
	}
	return err
}

// Listen opens a Unix socket at path, replacing a stale socket file.
func Listen(path string) (net.Listener, error) {
	if err := removeStale(path); err != nil {
		return nil, err
	}
	l, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}
	if err := os.Chmod(path, socketMode); err != nil {
		l.Close()
		return nil, fmt.Errorf("chmod %s: %w", path, err)
	}
	return l, nil
}

func removeStale(path string) error {
	fi, err := os.Lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if fi.Mode()&os.ModeSocket == 0 {
		return fmt.Errorf("%s exists and is not a socket", path)
	}
	conn, err := net.DialTimeout("unix", path, time.Second)
	if err == nil {
		conn.Close()
		return fmt.Errorf("%s is in use by another process", path)
	}
	return os.Remove(path)
}
