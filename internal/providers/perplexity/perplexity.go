// Package perplexity provides the Perplexity adapter. The endpoint is
// OpenAI-compatible but augments responses with search citations, which
// different API revisions have reported in different places; the adapter
// probes the known locations with gjson rather than pinning one schema.
package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	"aigateway/internal/core"
	"aigateway/internal/httpclient"
	"aigateway/internal/providers"
	"aigateway/internal/settings"
)

const (
	defaultBaseURL  = "https://api.perplexity.ai"
	maxErrorBodyLen = 500
)

func init() {
	providers.Register("perplexity", func(cfg settings.ProviderConfig) core.Provider {
		return New(cfg)
	})
}

// Provider implements core.Provider for the Perplexity API.
type Provider struct {
	httpClient *http.Client
	id         string
	apiKey     string
	model      string
	baseURL    string
}

// New creates a Perplexity adapter from a provider descriptor.
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

// NewWithHTTPClient creates a Perplexity adapter with a custom HTTP client.
func NewWithHTTPClient(cfg settings.ProviderConfig, client *http.Client) *Provider {
	p := New(cfg)
	p.httpClient = client
	return p
}

type perplexityRequest struct {
	Model       string              `json:"model"`
	Messages    []perplexityMessage `json:"messages"`
	MaxTokens   int                 `json:"max_tokens"`
	Temperature float64             `json:"temperature"`
}

type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type perplexityResponse struct {
	Model   string             `json:"model"`
	Choices []perplexityChoice `json:"choices"`
	Usage   perplexityUsage    `json:"usage"`
}

type perplexityChoice struct {
	Message      perplexityMessage `json:"message"`
	FinishReason string            `json:"finish_reason"`
}

type perplexityUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// citationPaths lists where API revisions have carried the citation list.
// The first path that yields a non-empty array wins; upstream order is
// preserved as-is so citation indices in the text keep lining up.
var citationPaths = []string{
	"citations",
	"choices.0.citations",
	"choices.0.message.citations",
}

func extractCitations(body []byte) []string {
	for _, path := range citationPaths {
		result := gjson.GetBytes(body, path)
		if !result.IsArray() {
			continue
		}
		arr := result.Array()
		if len(arr) == 0 {
			continue
		}
		citations := make([]string, 0, len(arr))
		for _, item := range arr {
			citations = append(citations, item.String())
		}
		return citations
	}
	return nil
}

// convertRequest translates the normalized request, prepending the system
// prompt as a system-role message.
func convertRequest(req *core.ChatRequest, model string) *perplexityRequest {
	pr := &perplexityRequest{
		Model:       model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages:    make([]perplexityMessage, 0, len(req.Messages)+1),
	}
	if req.SystemPrompt != "" {
		pr.Messages = append(pr.Messages, perplexityMessage{
			Role:    "system",
			Content: req.SystemPrompt,
		})
	}
	for _, msg := range req.Messages {
		pr.Messages = append(pr.Messages, perplexityMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	return pr
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
			fmt.Sprintf("Perplexity API error (status %d): %s",
				resp.StatusCode, core.Truncate(string(respBody), maxErrorBodyLen)),
			nil)
	}

	var pr perplexityResponse
	if err := json.Unmarshal(respBody, &pr); err != nil {
		return nil, core.NewProviderError(p.id, resp.StatusCode,
			fmt.Sprintf("failed to decode Perplexity response: %v", err), err)
	}

	if len(pr.Choices) == 0 {
		return nil, core.NewProviderError(p.id, resp.StatusCode,
			"Perplexity response contained no choices", nil)
	}
	choice := pr.Choices[0]

	model := pr.Model
	if model == "" {
		model = p.model
	}

	return &core.ChatResult{
		Content:      choice.Message.Content,
		Model:        model,
		Provider:     p.id,
		FinishReason: choice.FinishReason,
		Citations:    extractCitations(respBody),
		Usage: core.Usage{
			InputTokens:  pr.Usage.PromptTokens,
			OutputTokens: pr.Usage.CompletionTokens,
		},
	}, nil
}
