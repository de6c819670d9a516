package core

// ChatRequest is the normalized chat request every adapter accepts.
// Provider selects the configured provider; when empty the gateway
// substitutes the store's default provider.
type ChatRequest struct {
	Provider     string    `json:"provider,omitempty"`
	Messages     []Message `json:"messages"`
	SystemPrompt string    `json:"system_prompt,omitempty"`
	MaxTokens    int       `json:"max_tokens,omitempty"`
	Temperature  float64   `json:"temperature,omitempty"`
}

// Message is a single conversation turn. Roles are "user" or "assistant";
// system instructions travel in ChatRequest.SystemPrompt, not as a message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage holds normalized token counts. Each upstream names these fields
// differently (input_tokens/output_tokens vs prompt_tokens/completion_tokens);
// adapters translate into this one shape.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// ChatResult is the normalized response produced by every adapter.
//
// Content may be a bracketed placeholder such as "[Empty response: SAFETY]"
// when the upstream returned 200 with no usable text. That is a valid
// success value, not an error.
type ChatResult struct {
	Content      string   `json:"content"`
	Model        string   `json:"model"`
	Provider     string   `json:"provider"`
	Usage        Usage    `json:"usage"`
	Citations    []string `json:"citations,omitempty"`
	FinishReason string   `json:"finish_reason,omitempty"`
}

// ProbeResult is the outcome of probing a single provider during a batch
// test. Exactly one is produced per requested provider id.
type ProbeResult struct {
	Provider  string `json:"provider"`
	Success   bool   `json:"success"`
	Response  string `json:"response,omitempty"`
	Error     string `json:"error,omitempty"`
	Model     string `json:"model,omitempty"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

// ProviderStatus is the public listing entry for a configured provider.
// It reports credential presence only, never the key itself.
type ProviderStatus struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Model     string `json:"model"`
	Enabled   bool   `json:"enabled"`
	HasAPIKey bool   `json:"has_api_key"`
	IsDefault bool   `json:"is_default"`
}

// Truncate shortens s to at most n runes, appending "..." when it cuts.
// Used for error-body diagnostics and probe response excerpts.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
