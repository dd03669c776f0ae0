package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/yndnr/tokstore/internal/core/domain"
)

// StoreToken handles POST /tokens.
//
// The body is a flat token object. A missing key is generated. When expires
// is absent, the ttl_seconds query parameter sets it relative to now.
func (h *Handler) StoreToken(w http.ResponseWriter, r *http.Request) {
	var t domain.Token
	if err := h.decodeBody(w, r, &t); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	if t.Expires == 0 {
		if raw := r.URL.Query().Get("ttl_seconds"); raw != "" {
			secs, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || secs <= 0 {
				h.handleServiceError(w, r, domain.ErrBadRequest.WithDetails("ttl_seconds must be a positive integer"))
				return
			}
			t.Expires = h.now().Add(time.Duration(secs) * time.Second).UnixMilli()
		}
	}

	if t.Key == "" {
		key, err := domain.GenerateKey()
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		t.Key = key
	}

	res, err := h.store.StoreToken(r.Context(), &t)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if res.Degraded {
		h.writeDegraded(w, r)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, NewResponse(getRequestID(r), res.Token))
}

// FetchToken handles GET /tokens/{key}.
func (h *Handler) FetchToken(w http.ResponseWriter, r *http.Request) {
	res, err := h.store.FetchToken(r.Context(), r.PathValue("key"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if res.Degraded {
		h.writeDegraded(w, r)
		return
	}
	h.writeData(w, r, res.Token)
}

// ConfirmToken handles POST /tokens/{key}/confirm.
func (h *Handler) ConfirmToken(w http.ResponseWriter, r *http.Request) {
	var req ConfirmTokenRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	res, err := h.store.ConfirmToken(r.Context(), r.PathValue("key"), req.Secret)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if res.Degraded {
		h.writeDegraded(w, r)
		return
	}
	h.writeData(w, r, res.Token)
}

// DeleteToken handles DELETE /tokens/{key}.
func (h *Handler) DeleteToken(w http.ResponseWriter, r *http.Request) {
	h.deleteTokens(w, r, r.PathValue("key"))
}

// RevokeTokens handles POST /tokens/revoke.
func (h *Handler) RevokeTokens(w http.ResponseWriter, r *http.Request) {
	var req RevokeTokensRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	h.deleteTokens(w, r, req.Keys...)
}

func (h *Handler) deleteTokens(w http.ResponseWriter, r *http.Request, keys ...string) {
	res, err := h.store.DeleteTokens(r.Context(), keys...)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if res.Degraded {
		h.writeDegraded(w, r)
		return
	}
	h.writeData(w, r, DeleteTokensResponse{Deleted: res.Deleted})
}
