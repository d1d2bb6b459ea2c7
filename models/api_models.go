package models

// HistoryResponse is returned by the session history endpoint.
type HistoryResponse struct {
	TenantID  string    `json:"tenant_id"`
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
}

// StatusResponse is the liveness payload.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}
