package intentagent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseToolCall(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		outcome ParseOutcome
		tool    string
		args    map[string]interface{}
	}{
		{
			name:    "embedded in prose",
			text:    `some text {"type":"tool_call","tool":"x","arguments":{"a":1}} trailing`,
			outcome: ToolCall,
			tool:    "x",
			args:    map[string]interface{}{"a": float64(1)},
		},
		{
			name:    "no braces",
			text:    "Hola, ¿en qué puedo ayudarte?",
			outcome: NoCall,
		},
		{
			name:    "closing before opening",
			text:    "} nothing {",
			outcome: NoCall,
		},
		{
			name:    "malformed json",
			text:    `{"type":"tool_call","tool":}`,
			outcome: ParseError,
		},
		{
			name:    "wrong discriminator",
			text:    `{"type":"other","tool":"x"}`,
			outcome: ParseError,
		},
		{
			name:    "missing discriminator",
			text:    `{"tool":"get_student_status","arguments":{"student_id":"1024"}}`,
			outcome: ParseError,
		},
		{
			name:    "empty tool name",
			text:    `{"type":"tool_call","tool":"  "}`,
			outcome: ParseError,
		},
		{
			name:    "non-string tool name",
			text:    `{"type":"tool_call","tool":7}`,
			outcome: ParseError,
		},
		{
			name:    "arguments not an object",
			text:    `{"type":"tool_call","tool":"x","arguments":[1,2]}`,
			outcome: ParseError,
		},
		{
			name:    "arguments absent",
			text:    `{"type":"tool_call","tool":"x"}`,
			outcome: ToolCall,
			tool:    "x",
			args:    map[string]interface{}{},
		},
		{
			name:    "arguments null",
			text:    `{"type":"tool_call","tool":"x","arguments":null}`,
			outcome: ToolCall,
			tool:    "x",
			args:    map[string]interface{}{},
		},
		{
			name:    "widest span swallows two objects",
			text:    `{"type":"tool_call","tool":"a"} and {"type":"tool_call","tool":"b"}`,
			outcome: ParseError,
		},
		{
			name:    "nested arguments",
			text:    "```json\n{\"type\":\"tool_call\",\"tool\":\"get_student_status\",\"arguments\":{\"student_id\":\"1024\",\"meta\":{\"k\":true}}}\n```",
			outcome: ToolCall,
			tool:    "get_student_status",
			args: map[string]interface{}{
				"student_id": "1024",
				"meta":       map[string]interface{}{"k": true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseToolCall(tt.text)
			assert.Equal(t, tt.outcome, got.Outcome, got.Err)
			if tt.outcome == ParseError {
				assert.Error(t, got.Err)
			}
			if tt.outcome != ToolCall {
				return
			}
			assert.Equal(t, "tool_call", got.Call.Type)
			assert.Equal(t, tt.tool, got.Call.Tool)
			assert.Equal(t, tt.args, got.Call.Arguments)
		})
	}
}

func TestParseOutcomeString(t *testing.T) {
	assert.Equal(t, "no_call", NoCall.String())
	assert.Equal(t, "parse_error", ParseError.String())
	assert.Equal(t, "tool_call", ToolCall.String())
}
