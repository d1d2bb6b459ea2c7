package intentagent

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/Desarso/intentagent/models"
)

type ParseOutcome int

const (
	// NoCall means the text carries no tool request.
	NoCall ParseOutcome = iota
	// ParseError means a brace span was found but is not a valid tool call.
	ParseError
	ToolCall
)

func (o ParseOutcome) String() string {
	switch o {
	case ToolCall:
		return "tool_call"
	case ParseError:
		return "parse_error"
	default:
		return "no_call"
	}
}

// ParsedToolCall is the tagged result of scanning model text.
// Call is set only when Outcome is ToolCall, Err only for ParseError.
type ParsedToolCall struct {
	Outcome ParseOutcome
	Call    models.ToolCallEnvelope
	Err     error
}

var (
	errNotToolCall  = errors.New(`missing "type": "tool_call"`)
	errMissingTool  = errors.New(`"tool" must be a non-empty string`)
	errBadArguments = errors.New(`"arguments" must be an object`)
)

// ParseToolCall extracts an embedded tool call from raw model text. It
// takes the widest span from the first '{' to the last '}' and decodes it.
// It never fails; malformed payloads are reported as ParseError.
func ParseToolCall(text string) ParsedToolCall {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return ParsedToolCall{Outcome: NoCall}
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return ParsedToolCall{Outcome: ParseError, Err: err}
	}

	var kind string
	if raw, ok := payload["type"]; !ok || json.Unmarshal(raw, &kind) != nil || kind != models.EnvelopeToolCall {
		return ParsedToolCall{Outcome: ParseError, Err: errNotToolCall}
	}

	var tool string
	if raw, ok := payload["tool"]; !ok || json.Unmarshal(raw, &tool) != nil || strings.TrimSpace(tool) == "" {
		return ParsedToolCall{Outcome: ParseError, Err: errMissingTool}
	}

	args := map[string]interface{}{}
	if raw, ok := payload["arguments"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &args); err != nil {
			return ParsedToolCall{Outcome: ParseError, Err: errBadArguments}
		}
	}

	return ParsedToolCall{
		Outcome: ToolCall,
		Call: models.ToolCallEnvelope{
			Type:      models.EnvelopeToolCall,
			Tool:      strings.TrimSpace(tool),
			Arguments: args,
		},
	}
}
