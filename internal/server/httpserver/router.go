package httpserver

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/yndnr/tokstore/internal/core/service"
	"github.com/yndnr/tokstore/internal/server/httpserver/handler"
	"github.com/yndnr/tokstore/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Store serves the token endpoints.
	Store *service.TokenStore

	// Adapter is the backend name reported by health checks.
	Adapter string

	// Metrics records request counts and serves /metrics. Nil disables both.
	Metrics *metric.Registry

	// Logger for request logging.
	Logger *slog.Logger

	// ConfirmRateLimit is the per-IP confirm rate (requests/second).
	// Zero disables confirm rate limiting.
	ConfirmRateLimit float64

	// ConfirmBurst is the per-IP confirm burst size.
	ConfirmBurst int

	// TrustedProxies may set the client IP through forwarding headers.
	// Nil uses the TCP peer address.
	TrustedProxies *TrustedProxies
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	h := handler.New(cfg.Store, log, handler.WithAdapter(cfg.Adapter))

	var confirmLimiter *IPRateLimiter
	if cfg.ConfirmRateLimit > 0 {
		confirmLimiter = NewIPRateLimiter(cfg.ConfirmRateLimit, cfg.ConfirmBurst)
	}

	mux := http.NewServeMux()

	// Order: Logger -> RequestID -> ClientIP -> AccessLog -> Metrics -> Recover -> extra -> Handler
	route := func(pattern string, fn http.HandlerFunc, extra ...Middleware) {
		_, path, _ := strings.Cut(pattern, " ")
		mws := []Middleware{
			WithLogger(log),
			RequestID(),
			ClientIP(cfg.TrustedProxies),
			AccessLog(),
			Metrics(cfg.Metrics, path),
			Recover(),
		}
		mws = append(mws, extra...)
		mux.Handle(pattern, Chain(fn, mws...))
	}

	// Health endpoints
	route("GET /health", h.Health)
	route("GET /ready", h.Ready)

	// Token endpoints
	route("POST /tokens", h.StoreToken)
	route("POST /tokens/revoke", h.RevokeTokens)
	route("GET /tokens/{key}", h.FetchToken)
	route("DELETE /tokens/{key}", h.DeleteToken)
	route("POST /tokens/{key}/confirm", h.ConfirmToken, RateLimit(confirmLimiter))

	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
	}

	return mux
}
