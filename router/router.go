// Package router implements the ordered fallback chain over language-model
// providers.
//
// Providers are tried strictly in the configured order, never concurrently.
// Each provider gets up to MaxRetries attempts; the first success is
// returned and later providers are not contacted.
package router

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Desarso/intentagent/metrics"
	"github.com/Desarso/intentagent/models"
	"github.com/rs/zerolog"
)

const DefaultMaxRetries = 2

// ErrNoProvidersAttempted is the last error of an exhaustion in which no
// provider was ever called (empty order, or only unknown names).
var ErrNoProvidersAttempted = errors.New("no providers attempted")

// AllProvidersExhaustedError is returned when every configured provider
// used up its retry budget.
type AllProvidersExhaustedError struct {
	LastErr error
}

func (e *AllProvidersExhaustedError) Error() string {
	return fmt.Sprintf("all providers failed: last error: %v", e.LastErr)
}

func (e *AllProvidersExhaustedError) Unwrap() error { return e.LastErr }

// Named pairs a provider with its registry name.
type Named struct {
	Name     string
	Provider models.Provider
}

type Router struct {
	providers      map[string]models.Provider
	order          []string
	maxRetries     int
	attemptTimeout time.Duration
	logger         zerolog.Logger
	metrics        *metrics.Metrics

	mu    sync.Mutex
	stats map[string]int64
}

type Option func(*Router)

// WithOrder sets the traversal order. Names missing from the registry are
// skipped at call time.
func WithOrder(order []string) Option {
	return func(r *Router) {
		r.order = append([]string(nil), order...)
	}
}

// WithMaxRetries sets the number of attempts per provider. Values below one
// are raised to one.
func WithMaxRetries(n int) Option {
	return func(r *Router) {
		if n < 1 {
			n = 1
		}
		r.maxRetries = n
	}
}

// WithAttemptTimeout bounds every single provider call. Zero disables it.
func WithAttemptTimeout(d time.Duration) Option {
	return func(r *Router) { r.attemptTimeout = d }
}

func WithLogger(l zerolog.Logger) Option {
	return func(r *Router) { r.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Router) { r.metrics = m }
}

// New builds a router. Without WithOrder the registration order is used.
func New(providers []Named, opts ...Option) *Router {
	r := &Router{
		providers:  make(map[string]models.Provider, len(providers)),
		maxRetries: DefaultMaxRetries,
		logger:     zerolog.Nop(),
		stats:      make(map[string]int64, len(providers)),
	}
	for _, p := range providers {
		if _, dup := r.providers[p.Name]; !dup {
			r.order = append(r.order, p.Name)
		}
		r.providers[p.Name] = p.Provider
		r.stats[p.Name] = 0
	}
	for _, opt := range opts {
		opt(r)
	}

	r.logger.Info().Strs("order", r.order).Msg("LLM order configured")
	r.logger.Info().Int("max_retries", r.maxRetries).Msg("Max retries per provider")
	return r
}

// Generate walks the fallback chain and returns the first successful text.
func (r *Router) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	lastErr := ErrNoProvidersAttempted

	for _, name := range r.order {
		provider, ok := r.providers[name]
		if !ok || provider == nil {
			r.logger.Warn().Str("provider", name).Msg("Provider not found, skipping")
			continue
		}

		for attempt := 1; attempt <= r.maxRetries; attempt++ {
			if err := ctx.Err(); err != nil {
				return "", fmt.Errorf("router: %w", err)
			}

			r.logger.Info().Str("provider", name).Int("attempt", attempt).Msg("Trying provider")
			text, err := r.call(ctx, name, provider, systemPrompt, userPrompt)
			if err == nil {
				r.metrics.ProviderAttempt(name, true)
				r.recordSuccess(name)
				r.logger.Info().Str("provider", name).Msg("Success with provider")
				return text, nil
			}

			r.metrics.ProviderAttempt(name, false)
			r.logger.Error().Err(err).Str("provider", name).Int("attempt", attempt).Msg("Provider attempt failed")
			lastErr = err
		}

		r.logger.Warn().Str("provider", name).Msg("Provider exhausted retries, moving to next")
	}

	return "", &AllProvidersExhaustedError{LastErr: lastErr}
}

func (r *Router) call(ctx context.Context, name string, p models.Provider, systemPrompt, userPrompt string) (string, error) {
	if r.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.attemptTimeout)
		defer cancel()
	}

	text, err := p.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", models.NewProviderError(name, err)
	}
	if text == "" {
		return "", models.NewProviderError(name, models.ErrNoContent)
	}
	return text, nil
}

func (r *Router) recordSuccess(name string) {
	r.mu.Lock()
	r.stats[name]++
	r.mu.Unlock()
}

// Stats returns a snapshot of successful calls per provider.
func (r *Router) Stats() map[string]int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int64, len(r.stats))
	for k, v := range r.stats {
		out[k] = v
	}
	return out
}

// Order returns the configured traversal order.
func (r *Router) Order() []string {
	return append([]string(nil), r.order...)
}
