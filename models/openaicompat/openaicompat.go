// Package openaicompat is a Provider for any backend that speaks the OpenAI
// chat-completions wire format (Hugging Face router, Groq, OpenRouter, Cerebras).
package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Desarso/intentagent/models"
)

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 1 << 20

var errMissingAPIKey = errors.New("missing API key")

// OpenAICompat_Model implements models.Provider.
type OpenAICompat_Model struct {
	Name        string // provider name reported in errors, e.g. "hf"
	Model       string
	BaseURL     string
	APIKey      string // falls back to the APIKeyEnv environment variable
	APIKeyEnv   string
	Temperature *float64
	MaxTokens   *int
	HTTPClient  *http.Client
}

// NewFromPreset builds a model for one of the named Presets. Zero values
// in model/apiKey keep the preset defaults.
func NewFromPreset(name, model, apiKey string) (*OpenAICompat_Model, error) {
	p, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown openai-compatible preset: %s", name)
	}
	if model == "" {
		model = p.DefaultModel
	}
	return &OpenAICompat_Model{
		Name:      name,
		Model:     model,
		BaseURL:   p.BaseURL,
		APIKey:    apiKey,
		APIKeyEnv: p.APIKeyEnv,
	}, nil
}

// Generate sends one system+user exchange and returns the first choice.
func (o *OpenAICompat_Model) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	apiKey := o.apiKey()
	if apiKey == "" {
		return "", o.fail(0, errMissingAPIKey)
	}

	body, err := json.Marshal(ChatRequest{
		Model: o.Model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   o.MaxTokens,
		Temperature: o.Temperature,
	})
	if err != nil {
		return "", o.fail(0, fmt.Errorf("failed to marshal request body: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", o.fail(0, fmt.Errorf("failed to create HTTP request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client().Do(req)
	if err != nil {
		return "", o.fail(0, fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", o.fail(resp.StatusCode, fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.Unmarshal(raw, &errResp); err == nil && errResp.Error.Message != "" {
			return "", o.fail(resp.StatusCode, fmt.Errorf("API error: %s (type: %s)", errResp.Error.Message, errResp.Error.Type))
		}
		return "", o.fail(resp.StatusCode, fmt.Errorf("API error: %s", strings.TrimSpace(string(raw))))
	}

	var parsed ChatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", o.fail(resp.StatusCode, fmt.Errorf("failed to unmarshal response: %w", err))
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", o.fail(0, models.ErrNoContent)
	}
	return parsed.Choices[0].Message.Content, nil
}

func (o *OpenAICompat_Model) apiKey() string {
	if o.APIKey != "" {
		return o.APIKey
	}
	if o.APIKeyEnv != "" {
		return os.Getenv(o.APIKeyEnv)
	}
	return ""
}

func (o *OpenAICompat_Model) client() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}

func (o *OpenAICompat_Model) fail(status int, err error) error {
	name := o.Name
	if name == "" {
		name = "openai-compatible"
	}
	return &models.ProviderError{Provider: name, StatusCode: status, Err: err}
}
