package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/tokstore/internal/core/domain"
	"github.com/yndnr/tokstore/internal/telemetry/logger"
)

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeData(w, r, HealthResponse{
		Status:  "healthy",
		Backend: h.adapter,
		Time:    h.now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /ready. It fails with 503 while the backend is
// unreachable. A store without a backend is always ready.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		logger.L(r.Context()).Warn("readiness check failed", "error", err)
		h.writeError(w, r, http.StatusServiceUnavailable,
			domain.ErrUnavailable.Code, domain.ErrUnavailable.Message, HealthResponse{
				Status:  "unavailable",
				Backend: h.adapter,
				Time:    h.now().UTC().Format(time.RFC3339),
			})
		return
	}
	h.writeData(w, r, HealthResponse{
		Status:  "ready",
		Backend: h.adapter,
		Time:    h.now().UTC().Format(time.RFC3339),
	})
}
