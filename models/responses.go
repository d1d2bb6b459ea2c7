package models

const (
	EnvelopeToolCall     = "tool_call"
	EnvelopeToolResult   = "tool_result"
	EnvelopeChatResponse = "chat_response"
)

// ToolCallEnvelope is the structured request a model embeds in its text
// when it wants a tool to run.
type ToolCallEnvelope struct {
	Type      string                 `json:"type"`
	Tool      string                 `json:"tool"`
	Arguments map[string]interface{} `json:"arguments"`
}

// ToolResultEnvelope is the outcome of a tool attempt. It is returned to the
// caller and stored verbatim as the assistant turn.
type ToolResultEnvelope struct {
	Type            string                 `json:"type"`
	Success         bool                   `json:"success"`
	ExecutionTimeMS int64                  `json:"execution_time_ms"`
	Tool            string                 `json:"tool"`
	TenantID        string                 `json:"tenant_id"`
	SessionID       string                 `json:"session_id"`
	Data            map[string]interface{} `json:"data,omitempty"`
	Error           string                 `json:"error,omitempty"`
}

// ChatEnvelope wraps a plain model answer.
type ChatEnvelope struct {
	Type      string `json:"type"`
	TenantID  string `json:"tenant_id"`
	SessionID string `json:"session_id"`
	RAGUsed   bool   `json:"rag_used"`
	Response  string `json:"response"`
}
