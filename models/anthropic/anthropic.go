// Package anthropic is a Provider for the Anthropic Messages API.
package anthropic

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

const (
	ProviderName      = "anthropic"
	DefaultBaseURL    = "https://api.anthropic.com/v1/messages"
	DefaultAPIVersion = "2023-06-01"
	DefaultModel      = "claude-sonnet-4-20250514"
	DefaultMaxTokens  = 1024
	APIKeyEnv         = "ANTHROPIC_API_KEY"
)

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 1 << 20

var ErrMissingAPIKey = errors.New("missing API key")

// Anthropic_Model implements models.Provider.
type Anthropic_Model struct {
	Model       string
	Temperature *float64
	MaxTokens   *int
	BaseURL     string // Optional: custom API endpoint
	APIKey      string // falls back to APIKeyEnv, then ANTHROPIC_API_KEY
	APIKeyEnv   string
	HTTPClient  *http.Client
}

// HasCredentials reports whether a key is configured directly or through
// the environment.
func (a *Anthropic_Model) HasCredentials() bool {
	return a.apiKey() != ""
}

// Generate sends the system prompt in the request's system field and the
// user prompt as the only message, and joins the text blocks of the reply.
func (a *Anthropic_Model) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	apiKey := a.apiKey()
	if apiKey == "" {
		return "", fail(0, ErrMissingAPIKey)
	}

	model := a.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := DefaultMaxTokens
	if a.MaxTokens != nil && *a.MaxTokens > 0 {
		maxTokens = *a.MaxTokens
	}

	body, err := json.Marshal(AnthropicRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		System:      systemPrompt,
		Messages:    []AnthropicMsg{{Role: "user", Content: userPrompt}},
		Temperature: a.Temperature,
	})
	if err != nil {
		return "", fail(0, fmt.Errorf("failed to marshal request body: %w", err))
	}

	baseURL := a.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fail(0, fmt.Errorf("failed to create HTTP request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)
	req.Header.Set("anthropic-version", DefaultAPIVersion)

	resp, err := a.client().Do(req)
	if err != nil {
		return "", fail(0, fmt.Errorf("HTTP request failed: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fail(resp.StatusCode, fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.Unmarshal(raw, &errResp); err == nil && errResp.Error.Message != "" {
			return "", fail(resp.StatusCode, fmt.Errorf("API error: %s (type: %s)", errResp.Error.Message, errResp.Error.Type))
		}
		return "", fail(resp.StatusCode, fmt.Errorf("API error: %s", strings.TrimSpace(string(raw))))
	}

	var parsed AnthropicResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fail(resp.StatusCode, fmt.Errorf("failed to unmarshal response: %w", err))
	}

	var texts []string
	for _, block := range parsed.Content {
		if block.Type == "text" && block.Text != "" {
			texts = append(texts, block.Text)
		}
	}
	text := strings.Join(texts, "\n")
	if strings.TrimSpace(text) == "" {
		return "", fail(0, models.ErrNoContent)
	}
	return text, nil
}

func (a *Anthropic_Model) apiKey() string {
	if a.APIKey != "" {
		return a.APIKey
	}
	env := a.APIKeyEnv
	if env == "" {
		env = APIKeyEnv
	}
	return os.Getenv(env)
}

func (a *Anthropic_Model) client() *http.Client {
	if a.HTTPClient != nil {
		return a.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}

func fail(status int, err error) error {
	return &models.ProviderError{Provider: ProviderName, StatusCode: status, Err: err}
}
