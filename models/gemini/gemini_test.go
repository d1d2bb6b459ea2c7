package gemini

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Desarso/intentagent/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, handler http.HandlerFunc) *Gemini_Model {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	m, err := New(context.Background(), Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	return m
}

func TestGenerate_ReturnsCandidateText(t *testing.T) {
	var body string
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"hola desde gemini"}]}}]}`)
	})

	text, err := m.Generate(context.Background(), "eres un agente", "¿precio?")
	require.NoError(t, err)
	assert.Equal(t, "hola desde gemini", text)
	assert.True(t, strings.Contains(body, "eres un agente"), "system instruction missing from request")
}

func TestGenerate_EmptyCandidatesIsNoContent(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[]}`)
	})

	_, err := m.Generate(context.Background(), "", "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNoContent))
}

func TestGenerate_ServerErrorIsProviderError(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`)
	})

	_, err := m.Generate(context.Background(), "", "x")
	var perr *models.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ProviderName, perr.Provider)
}

func TestNew_RequiresAPIKey(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}
