package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yndnr/tokstore/internal/core/domain"
	"github.com/yndnr/tokstore/internal/core/service"
	"github.com/yndnr/tokstore/internal/telemetry/logger"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 1 << 20

// Handler serves the token API on top of a TokenStore.
type Handler struct {
	store   *service.TokenStore
	adapter string
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithAdapter sets the backend name reported by the health endpoints.
func WithAdapter(name string) Option {
	return func(h *Handler) {
		h.adapter = name
	}
}

// WithClock overrides the time source used for ttl_seconds.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// New creates a new Handler for store.
func New(store *service.TokenStore, logger *slog.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// writeJSON writes a response with the standard envelope.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, resp *Response) {
	w.Header().Set("Content-Type", "application/json")
	if resp.RequestID != "" {
		w.Header().Set("X-Request-ID", resp.RequestID)
	}
	if resp.Code != CodeOK {
		w.Header().Set("X-Error-Code", resp.Code)
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.L(r.Context()).Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeData(w http.ResponseWriter, r *http.Request, data any) {
	h.writeJSON(w, r, http.StatusOK, NewResponse(getRequestID(r), data))
}

func (h *Handler) writeDegraded(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, NewDegradedResponse(getRequestID(r)))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	h.writeJSON(w, r, status, NewErrorResponse(getRequestID(r), code, message, details))
}

// WriteError writes err as an enveloped error response.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	New(nil, nil).handleServiceError(w, r, err)
}

// handleServiceError converts token store errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.DomainError
	if errors.As(err, &de) {
		status := errorCodeToHTTPStatus(de.Code)
		if status >= http.StatusInternalServerError {
			logger.L(r.Context()).Error("request failed", "code", de.Code, "error", err)
		}
		var details any
		if de.Details != "" {
			details = de.Details
		}
		h.writeError(w, r, status, de.Code, de.Message, details)
		return
	}

	// Backend errors arrive unwrapped and are not shown to clients.
	logger.L(r.Context()).Error("internal error", "error", err)
	h.writeError(w, r, http.StatusInternalServerError, domain.ErrInternal.Code, domain.ErrInternal.Message, nil)
}

// decodeBody reads a JSON request body into v.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.ErrBadRequest.WithDetails("request body is required")
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.ErrBadRequest.WithDetails("request body too large")
		}
		return domain.ErrBadRequest.WithDetails("invalid request body")
	}
	return nil
}

// getRequestID returns the request ID set by the RequestID middleware.
func getRequestID(r *http.Request) string {
	if id := logger.RequestIDFromContext(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-ID")
}

// errorCodeToHTTPStatus maps error codes to HTTP status codes.
func errorCodeToHTTPStatus(code string) int {
	switch {
	case strings.HasSuffix(code, "-4010"):
		return http.StatusUnauthorized
	case strings.HasSuffix(code, "-4040"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "-4290"):
		return http.StatusTooManyRequests
	case strings.HasSuffix(code, "-4000"), strings.HasSuffix(code, "-4001"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "-5030"):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
