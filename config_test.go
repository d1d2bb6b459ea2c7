package intentagent

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable LoadConfig looks at so the host
// environment cannot leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SERVER_ADDR", "LLM_ORDER", "LLM_MAX_RETRIES", "LLM_ATTEMPT_TIMEOUT",
		"LLM_MAX_TOKENS", "LLM_TEMPERATURE",
		"LLM_HF_API_KEY", "HF_API_TOKEN", "LLM_HF_MODEL", "LLM_HF_BASE_URL",
		"LLM_GEMINI_API_KEY", "GEMINI_API_KEY", "LLM_GEMINI_MODEL",
		"LLM_GROQ_API_KEY", "GROQ_API_KEY", "LLM_OPENROUTER_API_KEY", "OPENROUTER_API_KEY",
		"LLM_CEREBRAS_API_KEY", "CEREBRAS_API_KEY", "LLM_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY",
		"STORE_TYPE", "STORE_DSN", "STORE_REDIS_ADDR", "STORE_REDIS_DB", "STORE_REDIS_TTL",
		"RAG_DATA_DIR", "RAG_TOP_K", "RAG_REINDEX_SCHEDULE",
		"HISTORY_MAX_MESSAGES", "TOOLS_DISABLED", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"hf", "mock"}, cfg.ProviderOrder())
	assert.Equal(t, 2, cfg.LLM.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.LLM.AttemptTimeout)
	assert.Equal(t, 200, cfg.LLM.MaxTokens)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, "mistralai/Mistral-7B-Instruct-v0.2", cfg.LLM.HF.Model)
	assert.Equal(t, "memory", cfg.Store.Type)
	assert.Equal(t, "data/tenants", cfg.RAG.DataDir)
	assert.Equal(t, 2, cfg.RAG.TopK)
	assert.Equal(t, 0, cfg.History.MaxMessages)
	assert.Empty(t, cfg.DisabledTools())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_ORDER", " Gemini, hf ,,mock ")
	t.Setenv("LLM_MAX_RETRIES", "5")
	t.Setenv("LLM_ATTEMPT_TIMEOUT", "2s")
	t.Setenv("HF_API_TOKEN", "hf-secret")
	t.Setenv("STORE_TYPE", "sqlite")
	t.Setenv("STORE_DSN", "/tmp/agent.sqlite")
	t.Setenv("TOOLS_DISABLED", "get_student_status")
	t.Setenv("HISTORY_MAX_MESSAGES", "10")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, []string{"gemini", "hf", "mock"}, cfg.ProviderOrder())
	assert.Equal(t, 5, cfg.LLM.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.LLM.AttemptTimeout)
	assert.Equal(t, "hf-secret", cfg.LLM.HF.APIKey)
	assert.Equal(t, "sqlite", cfg.Store.Type)
	assert.Equal(t, "/tmp/agent.sqlite", cfg.Store.DSN)
	assert.Equal(t, []string{"get_student_status"}, cfg.DisabledTools())
	assert.Equal(t, 10, cfg.History.MaxMessages)
}

func TestLoadConfig_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
llm:
  order: "mock"
  max_retries: 3
rag:
  data_dir: "/srv/knowledge"
  reindex_schedule: "@every 5m"
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"mock"}, cfg.ProviderOrder())
	assert.Equal(t, 3, cfg.LLM.MaxRetries)
	assert.Equal(t, "/srv/knowledge", cfg.RAG.DataDir)
	assert.Equal(t, "@every 5m", cfg.RAG.ReindexSchedule)
	assert.Equal(t, 200, cfg.LLM.MaxTokens)
}

func TestLoadConfig_Errors(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Setenv("STORE_TYPE", "cassandra")
	_, err = LoadConfig("")
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.WithProviderOrder(" , ")
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.History.MaxMessages = -1
	assert.Error(t, cfg.Validate())
}

func TestConfig_Setters(t *testing.T) {
	cfg := DefaultConfig().
		WithAddr(":1234").
		WithProviderOrder("gemini", "mock").
		WithStore("redis", "").
		WithDataDir("/data").
		WithLogLevel("debug")

	assert.Equal(t, ":1234", cfg.Server.Addr)
	assert.Equal(t, []string{"gemini", "mock"}, cfg.ProviderOrder())
	assert.Equal(t, "redis", cfg.Store.Type)
	assert.Equal(t, "/data", cfg.RAG.DataDir)
	assert.Equal(t, "debug", cfg.Log.Level)
}
