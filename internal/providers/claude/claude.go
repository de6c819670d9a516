// Package claude provides the Anthropic Messages API adapter.
package claude

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
	defaultBaseURL = "https://api.anthropic.com/v1"
	// Anthropic versions its API with a date header instead of the URL path
	apiVersion = "2023-06-01"
	// error bodies are truncated to keep diagnostics readable
	maxErrorBodyLen = 500
)

func init() {
	providers.Register("claude", func(cfg settings.ProviderConfig) core.Provider {
		return New(cfg)
	})
}

// Provider implements core.Provider for the Anthropic Messages API.
type Provider struct {
	httpClient *http.Client
	id         string
	apiKey     string
	model      string
	baseURL    string
}

// New creates a Claude adapter from a provider descriptor.
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

// NewWithHTTPClient creates a Claude adapter with a custom HTTP client.
func NewWithHTTPClient(cfg settings.ProviderConfig, client *http.Client) *Provider {
	p := New(cfg)
	p.httpClient = client
	return p
}

// claudeRequest is the Anthropic /v1/messages request body. The system
// prompt is a top-level field, never a message.
type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	System      string          `json:"system,omitempty"`
	Messages    []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the Anthropic /v1/messages response body.
type claudeResponse struct {
	ID         string          `json:"id"`
	Content    []claudeContent `json:"content"`
	Model      string          `json:"model"`
	StopReason string          `json:"stop_reason"`
	Usage      claudeUsage     `json:"usage"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type claudeUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// convertRequest translates the normalized request into Anthropic format.
func convertRequest(req *core.ChatRequest, model string) *claudeRequest {
	cr := &claudeRequest{
		Model:       model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		System:      req.SystemPrompt,
		Messages:    make([]claudeMessage, 0, len(req.Messages)),
	}
	for _, msg := range req.Messages {
		cr.Messages = append(cr.Messages, claudeMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	return cr
}

// Chat implements core.Provider.
func (p *Provider) Chat(ctx context.Context, req *core.ChatRequest) (*core.ChatResult, error) {
	body, err := json.Marshal(convertRequest(req, p.model))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

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
			fmt.Sprintf("Claude API error (status %d): %s",
				resp.StatusCode, core.Truncate(string(respBody), maxErrorBodyLen)),
			nil)
	}

	var cr claudeResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return nil, core.NewProviderError(p.id, resp.StatusCode,
			fmt.Sprintf("failed to decode Claude response: %v", err), err)
	}

	// content is an array of blocks; a plain chat completion carries the
	// text in the first text block
	var text string
	for _, block := range cr.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}

	return &core.ChatResult{
		Content:      text,
		Model:        cr.Model,
		Provider:     p.id,
		FinishReason: cr.StopReason,
		Usage: core.Usage{
			InputTokens:  cr.Usage.InputTokens,
			OutputTokens: cr.Usage.OutputTokens,
		},
	}, nil
}
