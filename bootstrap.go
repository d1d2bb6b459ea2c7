package intentagent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/Desarso/intentagent/common_tools"
	"github.com/Desarso/intentagent/intent"
	"github.com/Desarso/intentagent/logging"
	"github.com/Desarso/intentagent/metrics"
	"github.com/Desarso/intentagent/models/anthropic"
	"github.com/Desarso/intentagent/models/gemini"
	"github.com/Desarso/intentagent/models/mock"
	"github.com/Desarso/intentagent/models/openaicompat"
	"github.com/Desarso/intentagent/rag"
	"github.com/Desarso/intentagent/router"
	"github.com/Desarso/intentagent/stores"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// App is the fully wired agent.
type App struct {
	Config       *Config
	Logger       zerolog.Logger
	Orchestrator *Orchestrator
	Router       *router.Router
	Retrieval    *rag.Registry
	Scheduler    *rag.Scheduler
	Store        stores.SessionStore
	Traces       stores.TraceStore
	Metrics      *metrics.Metrics
	Registry     *prometheus.Registry
}

// NewApp builds every component from cfg. Providers without credentials
// are left out of the chain; the mock provider is always available.
func NewApp(ctx context.Context, cfg *Config, logger zerolog.Logger) (*App, error) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	store, err := stores.NewStore(ctx, storeConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}

	traces, err := traceStoreFor(store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("trace store: %w", err)
	}

	providers, err := buildProviders(ctx, cfg, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	r := router.New(providers,
		router.WithOrder(cfg.ProviderOrder()),
		router.WithMaxRetries(cfg.LLM.MaxRetries),
		router.WithAttemptTimeout(cfg.LLM.AttemptTimeout),
		router.WithLogger(logging.Component(logger, "router")),
		router.WithMetrics(m),
	)

	retrieval := rag.NewRegistry(cfg.RAG.DataDir,
		rag.WithTopK(cfg.RAG.TopK),
		rag.WithLogger(logging.Component(logger, "rag")),
	)

	var scheduler *rag.Scheduler
	if cfg.RAG.ReindexSchedule != "" {
		scheduler, err = rag.NewScheduler(retrieval, cfg.RAG.ReindexSchedule, logging.Component(logger, "rag"))
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	engine := common_tools.DefaultEngine()
	orch := NewOrchestrator(store, r,
		WithClassifier(intent.NewClassifier()),
		WithRetriever(retrieval),
		WithTools(engine, engine.Declarations()),
		WithToolApprover(NewToolApprover(cfg.DisabledTools()...)),
		WithTraceStore(traces),
		WithMetrics(m),
		WithLogger(logging.Component(logger, "orchestrator")),
		WithHistoryLimit(cfg.History.MaxMessages),
	)

	return &App{
		Config:       cfg,
		Logger:       logger,
		Orchestrator: orch,
		Router:       r,
		Retrieval:    retrieval,
		Scheduler:    scheduler,
		Store:        store,
		Traces:       traces,
		Metrics:      m,
		Registry:     reg,
	}, nil
}

// Start launches background jobs.
func (a *App) Start() {
	if a.Scheduler != nil {
		a.Scheduler.Start()
	}
}

func (a *App) Close() error {
	if a.Scheduler != nil {
		<-a.Scheduler.Stop().Done()
	}
	return a.Store.Close()
}

func storeConfig(cfg *Config) *stores.StoreConfig {
	switch cfg.Store.Type {
	case "redis":
		sc := stores.NewStoreConfig("redis", cfg.Store.Redis.Addr).
			WithOption("password", cfg.Store.Redis.Password).
			WithOption("db", strconv.Itoa(cfg.Store.Redis.DB))
		if cfg.Store.Redis.TTL > 0 {
			sc.WithOption("ttl", cfg.Store.Redis.TTL.String())
		}
		return sc
	case "sqlite":
		dsn := cfg.Store.DSN
		if dsn == "" {
			dsn = "sessions.sqlite"
		}
		return stores.NewStoreConfig("sqlite", dsn)
	default:
		return stores.NewStoreConfig(cfg.Store.Type, cfg.Store.DSN)
	}
}

// traceStoreFor records traces next to the sessions when the store is
// backed by gorm, in memory otherwise.
func traceStoreFor(store stores.SessionStore) (stores.TraceStore, error) {
	if g, ok := store.(interface{ DB() *gorm.DB }); ok {
		return stores.NewGORMTraceStore(g.DB())
	}
	return stores.NewMemoryTraceStore(), nil
}

func buildProviders(ctx context.Context, cfg *Config, logger zerolog.Logger) ([]router.Named, error) {
	maxTokens := cfg.LLM.MaxTokens
	temperature := cfg.LLM.Temperature

	var providers []router.Named
	compat := []struct {
		name string
		cfg  ProviderConfig
	}{
		{"hf", cfg.LLM.HF},
		{"groq", cfg.LLM.Groq},
		{"openrouter", cfg.LLM.OpenRouter},
		{"cerebras", cfg.LLM.Cerebras},
	}
	for _, c := range compat {
		name, pc := c.name, c.cfg
		m, err := openaicompat.NewFromPreset(name, pc.Model, pc.APIKey)
		if err != nil {
			return nil, err
		}
		if m.APIKey == "" && os.Getenv(m.APIKeyEnv) == "" {
			logger.Debug().Str("provider", name).Msg("no API key, provider not registered")
			continue
		}
		if pc.BaseURL != "" {
			m.BaseURL = pc.BaseURL
		}
		m.MaxTokens = &maxTokens
		m.Temperature = &temperature
		providers = append(providers, router.Named{Name: name, Provider: m})
	}

	temp32 := float32(temperature)
	g, err := gemini.New(ctx, gemini.Config{
		APIKey:      cfg.LLM.Gemini.APIKey,
		Model:       cfg.LLM.Gemini.Model,
		Temperature: &temp32,
		MaxTokens:   int32(maxTokens),
	})
	switch {
	case err == nil:
		providers = append(providers, router.Named{Name: gemini.ProviderName, Provider: g})
	case errors.Is(err, gemini.ErrMissingAPIKey):
		logger.Debug().Str("provider", gemini.ProviderName).Msg("no API key, provider not registered")
	default:
		return nil, err
	}

	claude := &anthropic.Anthropic_Model{
		Model:       cfg.LLM.Anthropic.Model,
		BaseURL:     cfg.LLM.Anthropic.BaseURL,
		APIKey:      cfg.LLM.Anthropic.APIKey,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	}
	if claude.HasCredentials() {
		providers = append(providers, router.Named{Name: anthropic.ProviderName, Provider: claude})
	} else {
		logger.Debug().Str("provider", anthropic.ProviderName).Msg("no API key, provider not registered")
	}

	providers = append(providers, router.Named{Name: "mock", Provider: mock.Mock_Model{}})
	return providers, nil
}
