package mock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_WithoutContext(t *testing.T) {
	text, err := Mock_Model{}.Generate(context.Background(), "sys", "Pregunta:\nhola")
	require.NoError(t, err)
	assert.Equal(t, NoContextReply, text)
}

func TestGenerate_EchoesContext(t *testing.T) {
	prompt := "Historial:\n\nContexto:\nEl precio de plan básico es $100 por unidad.\n\nPregunta:\nprecio?"
	text, err := Mock_Model{}.Generate(context.Background(), "sys", prompt)
	require.NoError(t, err)
	assert.Contains(t, text, "El precio de plan básico es $100 por unidad.")
	assert.Contains(t, text, "Gracias por tu consulta.")
}

func TestExtractContext_RequiresBothMarkers(t *testing.T) {
	assert.Equal(t, "", ExtractContext("Contexto: algo sin pregunta"))
	assert.Equal(t, "", ExtractContext("Contexto:\n   \nPregunta: x"))
}

func TestExtractContext_IgnoresMarkersInHistory(t *testing.T) {
	prompt := "Historial:\nUSER: Contexto: soy cliente nuevo\nASSISTANT: ok\n\n" +
		"Contexto:\nEnvíos en 48 horas.\n\nPregunta:\n¿envíos?"
	assert.Equal(t, "Envíos en 48 horas.", ExtractContext(prompt))

	noContext := "Historial:\nUSER: Contexto: algo\n\nContexto:\n\n\nPregunta:\nhola"
	assert.Equal(t, "", ExtractContext(noContext))
}

func TestGenerate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Mock_Model{}.Generate(ctx, "s", "u")
	assert.ErrorIs(t, err, context.Canceled)
}
