package intentagent

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Desarso/intentagent/models/mock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, cfg *Config) *App {
	t.Helper()
	for _, k := range []string{"HF_API_TOKEN", "GEMINI_API_KEY", "GROQ_API_KEY", "OPENROUTER_API_KEY", "CEREBRAS_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(k, "")
	}
	app, err := NewApp(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

func TestNewApp_OfflineChain(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "acme"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acme", "knowledge.txt"),
		[]byte("Plan Básico: $100 por unidad.\nEnvíos: 48 horas a todo el país.\n"), 0644))

	app := newTestApp(t, DefaultConfig().WithDataDir(dir))
	app.Start()
	ctx := context.Background()

	// hf has no key, so the chain falls through to the mock.
	res, err := app.Orchestrator.HandleMessage(ctx, "acme", "s1", "¿Cuál es el precio del plan básico?")
	require.NoError(t, err)
	require.NotNil(t, res.Chat)
	assert.True(t, res.Chat.RAGUsed)
	assert.Contains(t, res.Chat.Response, "El precio de plan básico es $100 por unidad.")

	res, err = app.Orchestrator.HandleMessage(ctx, "acme", "s1", "hola")
	require.NoError(t, err)
	assert.Equal(t, mock.NoContextReply, res.Chat.Response)

	// Unknown tenant: retrieval fails and the turn still completes.
	res, err = app.Orchestrator.HandleMessage(ctx, "ghost", "s1", "¿horario?")
	require.NoError(t, err)
	assert.False(t, res.Chat.RAGUsed)

	assert.Equal(t, int64(3), app.Router.Stats()["mock"])
	assert.Equal(t, int64(0), app.Router.Stats()["hf"])
	assert.Contains(t, app.Orchestrator.SystemPrompt(), "get_student_status")
}

func TestNewApp_SQLiteWiresTraceStore(t *testing.T) {
	cfg := DefaultConfig().WithStore("sqlite", filepath.Join(t.TempDir(), "agent.sqlite"))
	app := newTestApp(t, cfg)
	assert.NotNil(t, app.Traces)

	_, err := app.Orchestrator.HandleMessage(context.Background(), "t", "s", "hola")
	require.NoError(t, err)
	sessions, err := app.Store.ListSessions(context.Background(), "t")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 2, sessions[0].MessageCount)
}

func TestNewApp_RegistersConfiguredProviders(t *testing.T) {
	cfg := DefaultConfig().WithProviderOrder("groq", "gemini", "mock")
	cfg.LLM.Groq.APIKey = "k1"
	cfg.LLM.Gemini.APIKey = "k2"
	app := newTestApp(t, cfg)

	stats := app.Router.Stats()
	assert.Contains(t, stats, "groq")
	assert.Contains(t, stats, "gemini")
	assert.Contains(t, stats, "mock")
	assert.NotContains(t, stats, "hf")
	assert.Equal(t, []string{"groq", "gemini", "mock"}, app.Router.Order())
}

func TestNewApp_RegistersCerebrasAndAnthropic(t *testing.T) {
	cfg := DefaultConfig().WithProviderOrder("anthropic", "cerebras", "mock")
	cfg.LLM.Cerebras.APIKey = "k1"
	cfg.LLM.Anthropic.APIKey = "k2"
	app := newTestApp(t, cfg)

	stats := app.Router.Stats()
	assert.Contains(t, stats, "cerebras")
	assert.Contains(t, stats, "anthropic")
	assert.NotContains(t, stats, "groq")
	assert.Equal(t, []string{"anthropic", "cerebras", "mock"}, app.Router.Order())
}

func TestNewApp_BadSchedule(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RAG.ReindexSchedule = "whenever"
	_, err := NewApp(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}
