package models

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoContent is returned when a backend answers without any text.
var ErrNoContent = errors.New("provider returned no content")

// Provider wraps one language-model backend.
//
// Generate either returns non-empty text or fails with a *ProviderError.
// Implementations must never fold a failure into the returned text.
type Provider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)

func (f ProviderFunc) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f(ctx, systemPrompt, userPrompt)
}

// ProviderError reports a single failed backend call.
type ProviderError struct {
	Provider   string
	StatusCode int // HTTP status when the backend answered, 0 otherwise
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError wraps err for the named provider. A nil err yields nil.
func NewProviderError(provider string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &ProviderError{Provider: provider, Err: err}
}
