package models

// Chat_Request is the inbound body of POST /chat and of each websocket frame.
type Chat_Request struct {
	TenantID  string `json:"tenant_id" binding:"required"`
	SessionID string `json:"session_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}
