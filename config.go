package intentagent

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Desarso/intentagent/logging"
	"github.com/Desarso/intentagent/models/anthropic"
	"github.com/Desarso/intentagent/models/gemini"
	"github.com/Desarso/intentagent/models/openaicompat"
	"github.com/Desarso/intentagent/router"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full runtime configuration. Every key can be set from a
// YAML file or from the environment with dots replaced by underscores,
// e.g. llm.max_retries is LLM_MAX_RETRIES.
type Config struct {
	Server  ServerConfig   `mapstructure:"server"`
	LLM     LLMConfig      `mapstructure:"llm"`
	Store   StoreSettings  `mapstructure:"store"`
	RAG     RAGConfig      `mapstructure:"rag"`
	History HistoryConfig  `mapstructure:"history"`
	Tools   ToolsConfig    `mapstructure:"tools"`
	Log     logging.Config `mapstructure:"log"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LLMConfig struct {
	// Order is a comma separated provider list, tried left to right.
	Order          string         `mapstructure:"order"`
	MaxRetries     int            `mapstructure:"max_retries"`
	AttemptTimeout time.Duration  `mapstructure:"attempt_timeout"`
	MaxTokens      int            `mapstructure:"max_tokens"`
	Temperature    float64        `mapstructure:"temperature"`
	HF             ProviderConfig `mapstructure:"hf"`
	Gemini         ProviderConfig `mapstructure:"gemini"`
	Groq           ProviderConfig `mapstructure:"groq"`
	OpenRouter     ProviderConfig `mapstructure:"openrouter"`
	Cerebras       ProviderConfig `mapstructure:"cerebras"`
	Anthropic      ProviderConfig `mapstructure:"anthropic"`
}

type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type StoreSettings struct {
	Type  string      `mapstructure:"type"` // memory, sqlite, postgres or redis
	DSN   string      `mapstructure:"dsn"`
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type RAGConfig struct {
	DataDir string `mapstructure:"data_dir"`
	TopK    int    `mapstructure:"top_k"`

	// ReindexSchedule is a cron expression; empty disables scheduled reindexing.
	ReindexSchedule string `mapstructure:"reindex_schedule"`
}

type HistoryConfig struct {
	MaxMessages int `mapstructure:"max_messages"`
}

type ToolsConfig struct {
	Disabled string `mapstructure:"disabled"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		LLM: LLMConfig{
			Order:          "hf,mock",
			MaxRetries:     router.DefaultMaxRetries,
			AttemptTimeout: 30 * time.Second,
			MaxTokens:      200,
			Temperature:    0.7,
			HF: ProviderConfig{
				Model:   openaicompat.Presets["hf"].DefaultModel,
				BaseURL: openaicompat.HuggingFaceBaseURL,
			},
			Gemini:     ProviderConfig{Model: gemini.DefaultModel},
			Groq:       ProviderConfig{Model: openaicompat.Presets["groq"].DefaultModel, BaseURL: openaicompat.GroqBaseURL},
			OpenRouter: ProviderConfig{Model: openaicompat.Presets["openrouter"].DefaultModel, BaseURL: openaicompat.OpenRouterBaseURL},
			Cerebras:   ProviderConfig{Model: openaicompat.Presets["cerebras"].DefaultModel, BaseURL: openaicompat.CerebrasBaseURL},
			Anthropic:  ProviderConfig{Model: anthropic.DefaultModel, BaseURL: anthropic.DefaultBaseURL},
		},
		Store: StoreSettings{
			Type:  "memory",
			Redis: RedisConfig{Addr: "localhost:6379"},
		},
		RAG: RAGConfig{DataDir: "data/tenants", TopK: 2},
		Log: logging.Config{Level: "info", Format: "json"},
	}
}

// LoadConfig reads .env (when present), the optional config file and the
// environment, in increasing priority.
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional; production sets real environment variables.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("llm.hf.api_key", "LLM_HF_API_KEY", "HF_API_TOKEN")
	_ = v.BindEnv("llm.gemini.api_key", "LLM_GEMINI_API_KEY", gemini.APIKeyEnv)
	_ = v.BindEnv("llm.groq.api_key", "LLM_GROQ_API_KEY", "GROQ_API_KEY")
	_ = v.BindEnv("llm.openrouter.api_key", "LLM_OPENROUTER_API_KEY", "OPENROUTER_API_KEY")
	_ = v.BindEnv("llm.cerebras.api_key", "LLM_CEREBRAS_API_KEY", "CEREBRAS_API_KEY")
	_ = v.BindEnv("llm.anthropic.api_key", "LLM_ANTHROPIC_API_KEY", anthropic.APIKeyEnv)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("intentagent")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("llm.order", d.LLM.Order)
	v.SetDefault("llm.max_retries", d.LLM.MaxRetries)
	v.SetDefault("llm.attempt_timeout", d.LLM.AttemptTimeout)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	for name, p := range map[string]ProviderConfig{
		"hf": d.LLM.HF, "gemini": d.LLM.Gemini, "groq": d.LLM.Groq, "openrouter": d.LLM.OpenRouter,
		"cerebras": d.LLM.Cerebras, "anthropic": d.LLM.Anthropic,
	} {
		v.SetDefault("llm."+name+".api_key", p.APIKey)
		v.SetDefault("llm."+name+".model", p.Model)
		v.SetDefault("llm."+name+".base_url", p.BaseURL)
	}
	v.SetDefault("store.type", d.Store.Type)
	v.SetDefault("store.dsn", d.Store.DSN)
	v.SetDefault("store.redis.addr", d.Store.Redis.Addr)
	v.SetDefault("store.redis.password", d.Store.Redis.Password)
	v.SetDefault("store.redis.db", d.Store.Redis.DB)
	v.SetDefault("store.redis.ttl", d.Store.Redis.TTL)
	v.SetDefault("rag.data_dir", d.RAG.DataDir)
	v.SetDefault("rag.top_k", d.RAG.TopK)
	v.SetDefault("rag.reindex_schedule", d.RAG.ReindexSchedule)
	v.SetDefault("history.max_messages", d.History.MaxMessages)
	v.SetDefault("tools.disabled", d.Tools.Disabled)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Store.Type) {
	case "", "memory", "sqlite", "postgres", "redis":
	default:
		return fmt.Errorf("unsupported store type: %s", c.Store.Type)
	}
	if len(c.ProviderOrder()) == 0 {
		return errors.New("llm.order must name at least one provider")
	}
	if c.History.MaxMessages < 0 {
		return errors.New("history.max_messages must not be negative")
	}
	return nil
}

// ProviderOrder splits llm.order on commas, dropping blanks.
func (c *Config) ProviderOrder() []string {
	return splitList(c.LLM.Order)
}

func (c *Config) DisabledTools() []string {
	return splitList(c.Tools.Disabled)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// WithAddr sets the HTTP listen address.
func (c *Config) WithAddr(addr string) *Config {
	c.Server.Addr = addr
	return c
}

// WithProviderOrder sets the fallback chain, e.g. "gemini,hf,mock".
func (c *Config) WithProviderOrder(order ...string) *Config {
	c.LLM.Order = strings.Join(order, ",")
	return c
}

// WithStore selects the session store backend.
func (c *Config) WithStore(storeType, dsn string) *Config {
	c.Store.Type = storeType
	c.Store.DSN = dsn
	return c
}

// WithDataDir sets the root holding <tenant>/knowledge.txt files.
func (c *Config) WithDataDir(dir string) *Config {
	c.RAG.DataDir = dir
	return c
}

// WithLogLevel sets the log level (debug, info, warn, error).
func (c *Config) WithLogLevel(level string) *Config {
	c.Log.Level = level
	return c
}
