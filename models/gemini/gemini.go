// Package gemini adapts Google's Gemini API to the models.Provider contract.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/Desarso/intentagent/models"
	"google.golang.org/genai"
)

var ErrMissingAPIKey = errors.New("gemini: missing API key")

const (
	ProviderName = "gemini"
	DefaultModel = "gemini-2.0-flash"
	APIKeyEnv    = "GEMINI_API_KEY"
)

type Gemini_Model struct {
	Model       string
	Temperature *float32
	MaxTokens   int32

	client *genai.Client
}

type Config struct {
	APIKey      string
	Model       string
	Temperature *float32
	MaxTokens   int32
	// BaseURL overrides the Gemini endpoint, mostly for tests.
	BaseURL    string
	HTTPClient *http.Client
}

// New builds a Gemini provider. An empty APIKey falls back to GEMINI_API_KEY.
func New(ctx context.Context, cfg Config) (*Gemini_Model, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(APIKeyEnv)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w (set %s)", ErrMissingAPIKey, APIKeyEnv)
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Gemini_Model{
		Model:       model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		client:      client,
	}, nil
}

func (g *Gemini_Model) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     g.Temperature,
		MaxOutputTokens: g.MaxTokens,
	}
	if systemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	result, err := g.client.Models.GenerateContent(ctx, g.Model, genai.Text(userPrompt), config)
	if err != nil {
		return "", toProviderError(err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", models.NewProviderError(ProviderName, models.ErrNoContent)
	}
	return text, nil
}

func toProviderError(err error) error {
	perr := &models.ProviderError{Provider: ProviderName, Err: err}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		perr.StatusCode = apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		perr.StatusCode = apiErrPtr.Code
	}
	return perr
}
