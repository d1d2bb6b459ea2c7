package sessions

import (
	"context"
	"sync"

	"github.com/Desarso/intentagent"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// AgentInterface is the dialogue entry point the transports drive.
// *intentagent.Orchestrator satisfies it.
type AgentInterface interface {
	HandleMessage(ctx context.Context, tenantID, sessionID, message string) (intentagent.TurnResult, error)
}

// Reindexer rebuilds one tenant's retrieval index.
type Reindexer interface {
	Reindex(ctx context.Context, tenantID string) (int, error)
}

// StatsProvider reports successful calls per provider.
type StatsProvider interface {
	Stats() map[string]int64
}

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"

	LivenessStatus = "AI Commercial Agent running"
)

// ChatResponse wraps the envelope returned for a turn.
type ChatResponse struct {
	Response intentagent.TurnResult `json:"response"`
}

// WebSocketWriter serializes writes to one connection.
type WebSocketWriter struct {
	Conn   *websocket.Conn
	Logger zerolog.Logger
	mu     sync.Mutex
}

func (w *WebSocketWriter) WriteResponse(resp interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Conn.WriteJSON(resp)
}

func (w *WebSocketWriter) WriteError(message, requestID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.Conn.WriteJSON(map[string]string{"error": message, "request_id": requestID})
}
