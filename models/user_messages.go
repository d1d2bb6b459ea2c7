package models

// Role identifies who authored a message in a session log.
type Role string

const (
	RoleUser         Role = "user"
	RoleAssistant    Role = "assistant"
	RoleAssistantRaw Role = "assistant_raw" // unprocessed model text, kept for legacy logs
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleAssistantRaw:
		return true
	}
	return false
}

// Message is one immutable entry of a session log.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Section headers of the user turn. Prompt builders and the mock provider
// agree on them.
const (
	HistoryMarker  = "Historial:"
	ContextMarker  = "Contexto:"
	QuestionMarker = "Pregunta:"
)
