package intentagent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Desarso/intentagent/models"
)

const baseInstruction = `Eres un agente comercial que atiende a clientes de distintas empresas.
Responde en español, de forma breve y basándote en el contexto entregado cuando exista.
Si el contexto no contiene la respuesta, dilo con honestidad.`

const toolInstruction = `
Puedes ejecutar herramientas. Cuando necesites una, responde ÚNICAMENTE con un
objeto JSON con esta forma, sin texto adicional antes ni después:

{"type": "tool_call", "tool": "<nombre>", "arguments": {<argumentos>}}

Herramientas disponibles:
`

// BuildSystemPrompt renders the fixed instruction and the tool catalog.
func BuildSystemPrompt(tools []models.FunctionDeclaration) string {
	var b strings.Builder
	b.WriteString(baseInstruction)
	if len(tools) == 0 {
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(toolInstruction)
	for _, t := range tools {
		params, err := json.Marshal(t.Parameters)
		if err != nil {
			params = []byte("{}")
		}
		desc := strings.Join(strings.Fields(t.Description), " ")
		fmt.Fprintf(&b, "- %s: %s Parámetros: %s\n", t.Name, desc, params)
	}
	return strings.TrimRight(b.String(), "\n")
}

// BuildUserPrompt serializes history, retrieval context and the question.
// The section headers are the ones models.ContextMarker and friends name.
func BuildUserPrompt(history []models.Message, context, message string) string {
	var b strings.Builder

	b.WriteString(models.HistoryMarker)
	b.WriteString("\n")
	for _, m := range history {
		fmt.Fprintf(&b, "%s: %s\n", strings.ToUpper(string(m.Role)), m.Content)
	}

	b.WriteString("\n")
	b.WriteString(models.ContextMarker)
	b.WriteString("\n")
	b.WriteString(context)

	b.WriteString("\n\n")
	b.WriteString(models.QuestionMarker)
	b.WriteString("\n")
	b.WriteString(message)
	return b.String()
}
