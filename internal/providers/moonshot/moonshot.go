// Package moonshot provides the Moonshot (Kimi) adapter. Moonshot exposes
// an OpenAI-compatible chat completions endpoint, so the wire format is the
// classic completions shape with Bearer auth.
package moonshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"aigateway/internal/core"
	"aigateway/internal/httpclient"
	"aigateway/internal/providers"
	"aigateway/internal/settings"
)

const (
	defaultBaseURL  = "https://api.moonshot.cn/v1"
	maxErrorBodyLen = 500
)

func init() {
	providers.Register("moonshot", func(cfg settings.ProviderConfig) core.Provider {
		return New(cfg)
	})
}

// Provider implements core.Provider for the Moonshot API.
type Provider struct {
	httpClient *http.Client
	id         string
	apiKey     string
	model      string
	baseURL    string
}

// New creates a Moonshot adapter from a provider descriptor.
func New(cfg settings.ProviderConfig) *Provider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{
		id:         cfg.ID,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    baseURL,
		httpClient: httpclient.NewDefault(),
	}
}

// NewWithHTTPClient creates a Moonshot adapter with a custom HTTP client.
func NewWithHTTPClient(cfg settings.ProviderConfig, client *http.Client) *Provider {
	p := New(cfg)
	p.httpClient = client
	return p
}

type moonshotRequest struct {
	Model       string            `json:"model"`
	Messages    []moonshotMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	Temperature float64           `json:"temperature"`
}

type moonshotMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type moonshotResponse struct {
	Model   string           `json:"model"`
	Choices []moonshotChoice `json:"choices"`
	Usage   moonshotUsage    `json:"usage"`
}

type moonshotChoice struct {
	Message      moonshotMessage `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

type moonshotUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// convertRequest translates the normalized request, prepending the system
// prompt as a system-role message.
func convertRequest(req *core.ChatRequest, model string) *moonshotRequest {
	mr := &moonshotRequest{
		Model:       model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages:    make([]moonshotMessage, 0, len(req.Messages)+1),
	}
	if req.SystemPrompt != "" {
		mr.Messages = append(mr.Messages, moonshotMessage{
			Role:    "system",
			Content: req.SystemPrompt,
		})
	}
	for _, msg := range req.Messages {
		mr.Messages = append(mr.Messages, moonshotMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	return mr
}

// Chat implements core.Provider.
func (p *Provider) Chat(ctx context.Context, req *core.ChatRequest) (*core.ChatResult, error) {
	body, err := json.Marshal(convertRequest(req, p.model))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, providers.WireError(p.id, err)
	}
	defer func() {
		_ = resp.Body.Close() //nolint:errcheck
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, providers.WireError(p.id, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, core.NewProviderError(p.id, resp.StatusCode,
			fmt.Sprintf("Moonshot API error (status %d): %s",
				resp.StatusCode, core.Truncate(string(respBody), maxErrorBodyLen)),
			nil)
	}

	var mr moonshotResponse
	if err := json.Unmarshal(respBody, &mr); err != nil {
		return nil, core.NewProviderError(p.id, resp.StatusCode,
			fmt.Sprintf("failed to decode Moonshot response: %v", err), err)
	}

	if len(mr.Choices) == 0 {
		return nil, core.NewProviderError(p.id, resp.StatusCode,
			"Moonshot response contained no choices", nil)
	}
	choice := mr.Choices[0]

	model := mr.Model
	if model == "" {
		model = p.model
	}

	return &core.ChatResult{
		Content:      choice.Message.Content,
		Model:        model,
		Provider:     p.id,
		FinishReason: choice.FinishReason,
		Usage: core.Usage{
			InputTokens:  mr.Usage.PromptTokens,
			OutputTokens: mr.Usage.CompletionTokens,
		},
	}, nil
}
