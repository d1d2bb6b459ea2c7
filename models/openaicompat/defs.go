package openaicompat

// OpenAI-compatible chat-completions request/response types

type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	Stream      bool      `json:"stream"`
}

type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

type ChatResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason *string `json:"finish_reason,omitempty"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type ErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code,omitempty"`
	} `json:"error"`
}

// Preset holds the endpoint defaults of a known OpenAI-compatible backend.
type Preset struct {
	BaseURL      string
	DefaultModel string
	APIKeyEnv    string
}

const (
	HuggingFaceBaseURL = "https://router.huggingface.co/v1/chat/completions"
	GroqBaseURL        = "https://api.groq.com/openai/v1/chat/completions"
	OpenRouterBaseURL  = "https://openrouter.ai/api/v1/chat/completions"
	CerebrasBaseURL    = "https://api.cerebras.ai/v1/chat/completions"
)

// Presets are keyed by the provider name used in the router order.
var Presets = map[string]Preset{
	"hf": {
		BaseURL:      HuggingFaceBaseURL,
		DefaultModel: "mistralai/Mistral-7B-Instruct-v0.2",
		APIKeyEnv:    "HF_API_TOKEN",
	},
	"groq": {
		BaseURL:      GroqBaseURL,
		DefaultModel: "llama-3.1-70b-versatile",
		APIKeyEnv:    "GROQ_API_KEY",
	},
	"openrouter": {
		BaseURL:      OpenRouterBaseURL,
		DefaultModel: "openrouter/auto",
		APIKeyEnv:    "OPENROUTER_API_KEY",
	},
	"cerebras": {
		BaseURL:      CerebrasBaseURL,
		DefaultModel: "llama-3.3-70b",
		APIKeyEnv:    "CEREBRAS_API_KEY",
	},
}
