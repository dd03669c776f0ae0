package handler

import "time"

// Response codes that are not domain error codes.
const (
	CodeOK = "OK"

	// CodeNoLocalSession reports that no backend is configured and the
	// request was accepted without effect.
	CodeNoLocalSession = "NO_LOCAL_SESSION"
)

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics which uses Prometheus format).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      CodeOK,
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewDegradedResponse creates the response sent when no backend is configured.
func NewDegradedResponse(requestID string) *Response {
	return &Response{
		Code:      CodeNoLocalSession,
		Message:   "no local session store configured",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// ConfirmTokenRequest is the request body for POST /tokens/{key}/confirm.
type ConfirmTokenRequest struct {
	Secret string `json:"password"`
}

// RevokeTokensRequest is the request body for POST /tokens/revoke.
type RevokeTokensRequest struct {
	Keys []string `json:"keys"`
}

// DeleteTokensResponse is the response body for token deletion.
type DeleteTokensResponse struct {
	Deleted int `json:"deleted"`
}

// HealthResponse is the response body for /health and /ready.
type HealthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend,omitempty"`
	Time    string `json:"time"`
}
