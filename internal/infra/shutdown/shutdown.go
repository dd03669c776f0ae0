package shutdown

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// DefaultTimeout bounds the time all hooks together may take.
const DefaultTimeout = 15 * time.Second

type hook struct {
	name string
	fn   func(context.Context) error
}

// Handler runs named shutdown hooks once, in reverse order of registration.
type Handler struct {
	timeout time.Duration
	logger  *slog.Logger
	signals []os.Signal

	mu    sync.Mutex
	hooks []hook

	once sync.Once
	err  error
	done chan struct{}
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithSignals replaces the signals Wait listens for.
func WithSignals(sig ...os.Signal) Option {
	return func(h *Handler) {
		h.signals = sig
	}
}

// NewHandler creates a new shutdown handler. A non-positive timeout selects
// DefaultTimeout.
func NewHandler(timeout time.Duration, opts ...Option) *Handler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	h := &Handler{
		timeout: timeout,
		logger:  slog.Default(),
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// OnShutdown registers a shutdown hook.
// Hooks are called in reverse order of registration.
func (h *Handler) OnShutdown(name string, fn func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook{name: name, fn: fn})
}

// Wait blocks until a signal arrives or ctx is done, then runs the hooks.
func (h *Handler) Wait(ctx context.Context) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, h.signals...)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		h.logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		h.logger.Info("shutdown requested", "reason", context.Cause(ctx))
	}
	return h.Shutdown()
}

// Shutdown runs every hook once under the handler timeout. Later calls
// return the first call's result. Hook errors are joined.
func (h *Handler) Shutdown() error {
	h.once.Do(func() {
		defer close(h.done)

		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		h.mu.Lock()
		hooks := make([]hook, len(h.hooks))
		copy(hooks, h.hooks)
		h.mu.Unlock()

		var errs []error
		for i := len(hooks) - 1; i >= 0; i-- {
			hk := hooks[i]
			start := time.Now()
			if err := hk.fn(ctx); err != nil {
				h.logger.Error("shutdown hook failed", "hook", hk.name, "error", err)
				errs = append(errs, fmt.Errorf("%s: %w", hk.name, err))
				continue
			}
			h.logger.Debug("shutdown hook completed", "hook", hk.name, "elapsed", time.Since(start))
		}
		h.err = errors.Join(errs...)
	})
	<-h.done
	return h.err
}

// Done returns a channel that closes when shutdown is complete.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
