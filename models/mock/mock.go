// Package mock is a deterministic offline Provider. It is the last link of
// the default fallback chain so the agent answers even without API keys.
package mock

import (
	"context"
	"strings"

	"github.com/Desarso/intentagent/models"
)

const NoContextReply = "No encontré información suficiente para responder tu consulta."

type Mock_Model struct{}

// Generate answers from the Contexto section of the user prompt, or with a
// fixed apology when that section is absent or empty.
func (Mock_Model) Generate(ctx context.Context, _ string, userPrompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", models.NewProviderError("mock", err)
	}

	found := ExtractContext(userPrompt)
	if found == "" {
		return NoContextReply, nil
	}

	return "Gracias por tu consulta.\n\n" +
		"Estos son los detalles relevantes:\n\n" +
		found + "\n\n" +
		"Si deseas una cotización personalizada o más información, puedo ayudarte.", nil
}

// ExtractContext returns the trimmed text between the last context marker
// and the question marker that follows it, or "" when either is missing.
// Earlier markers belong to history and are ignored.
func ExtractContext(userPrompt string) string {
	q := strings.LastIndex(userPrompt, models.QuestionMarker)
	if q < 0 {
		return ""
	}
	c := strings.LastIndex(userPrompt[:q], models.ContextMarker)
	if c < 0 {
		return ""
	}
	return strings.TrimSpace(userPrompt[c+len(models.ContextMarker) : q])
}
