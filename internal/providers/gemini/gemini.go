// Package gemini provides the Google Gemini generateContent adapter.
//
// Gemini's turn rules differ from every other upstream: the assistant role
// is called "model", two adjacent turns may not share a role, and there is
// no native system field on this endpoint. The adapter reshapes the
// normalized conversation accordingly and never fails a call over a missing
// response text — safety blocks and other empty finishes become bracketed
// placeholder content.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"aigateway/internal/core"
	"aigateway/internal/httpclient"
	"aigateway/internal/providers"
	"aigateway/internal/settings"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// long transcripts can push Gemini generation into the minutes
	requestTimeout = 300 * time.Second
	maxErrorBodyLen = 500
)

func init() {
	builder := func(cfg settings.ProviderConfig) core.Provider {
		return New(cfg)
	}
	// two descriptor ids share this adapter, differing only in model
	providers.Register("gemini-pro", builder)
	providers.Register("gemini-flash", builder)
}

// Provider implements core.Provider for the native Gemini API.
type Provider struct {
	httpClient *http.Client
	id         string
	apiKey     string
	model      string
	baseURL    string
}

// New creates a Gemini adapter from a provider descriptor.
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
		httpClient: httpclient.New(requestTimeout),
	}
}

// NewWithHTTPClient creates a Gemini adapter with a custom HTTP client.
func NewWithHTTPClient(cfg settings.ProviderConfig, client *http.Client) *Provider {
	p := New(cfg)
	p.httpClient = client
	return p
}

type geminiRequest struct {
	Contents         []geminiContent       `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
	SafetySettings   []geminiSafetySetting  `json:"safetySettings"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// safetyOff disables every safety category; blocked content is reported
// through the finish reason instead of an upstream refusal.
var safetyOff = []geminiSafetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "OFF"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "OFF"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "OFF"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "OFF"},
}

type geminiResponse struct {
	Candidates    []geminiCandidate `json:"candidates"`
	UsageMetadata *geminiUsage      `json:"usageMetadata"`
}

type geminiCandidate struct {
	Content      *geminiContent `json:"content"`
	FinishReason string         `json:"finishReason"`
}

type geminiUsage struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
}

// Text aggregates the text parts of the first candidate, mirroring the SDK
// accessor. Returns "" when there is nothing to aggregate.
func (r *geminiResponse) Text() string {
	if len(r.Candidates) == 0 || r.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}

// buildContents reshapes the normalized conversation into Gemini turns:
//   - the system prompt becomes a leading synthetic user turn tagged as a
//     system instruction (this endpoint has no native system field)
//   - assistant maps to "model", everything else to "user"
//   - messages with empty content are skipped
//   - consecutive same-role turns are merged (the upstream rejects
//     same-role-adjacent turns)
func buildContents(req *core.ChatRequest) []geminiContent {
	var contents []geminiContent

	if req.SystemPrompt != "" {
		contents = append(contents, geminiContent{
			Role: "user",
			Parts: []geminiPart{{
				Text: fmt.Sprintf("[System Instruction]\n%s\n\n[User Message]", req.SystemPrompt),
			}},
		})
	}

	for _, msg := range req.Messages {
		if msg.Content == "" {
			continue
		}
		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}

		if len(contents) > 0 && contents[len(contents)-1].Role == role {
			last := &contents[len(contents)-1]
			last.Parts[0].Text += "\n\n" + msg.Content
			continue
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}

	return contents
}

// extractText pulls the response text without ever failing the call:
// aggregated accessor first, then a manual walk over the first candidate's
// parts joined with newlines, and finally a bracketed placeholder built
// from the finish reason.
func extractText(resp *geminiResponse) string {
	if text := resp.Text(); text != "" {
		return text
	}

	if len(resp.Candidates) == 0 {
		return "[No content returned]"
	}
	candidate := resp.Candidates[0]

	if candidate.Content != nil {
		var parts []string
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				parts = append(parts, part.Text)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "\n")
		}
	}

	finishReason := candidate.FinishReason
	if finishReason == "" {
		finishReason = "UNKNOWN"
	}
	return fmt.Sprintf("[Empty response: %s]", finishReason)
}

// Chat implements core.Provider.
func (p *Provider) Chat(ctx context.Context, req *core.ChatRequest) (*core.ChatResult, error) {
	gr := &geminiRequest{
		Contents: buildContents(req),
		GenerationConfig: geminiGenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
		SafetySettings: safetyOff,
	}

	body, err := json.Marshal(gr)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, p.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	// The native Gemini API authenticates with the key in the query string
	q := httpReq.URL.Query()
	q.Add("key", p.apiKey)
	httpReq.URL.RawQuery = q.Encode()

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
			fmt.Sprintf("Gemini API error (status %d): %s",
				resp.StatusCode, core.Truncate(string(respBody), maxErrorBodyLen)),
			nil)
	}

	var gemResp geminiResponse
	if err := json.Unmarshal(respBody, &gemResp); err != nil {
		return nil, core.NewProviderError(p.id, resp.StatusCode,
			fmt.Sprintf("failed to decode Gemini response: %v", err), err)
	}

	finishReason := "UNKNOWN"
	if len(gemResp.Candidates) > 0 && gemResp.Candidates[0].FinishReason != "" {
		finishReason = gemResp.Candidates[0].FinishReason
	}

	var usage core.Usage
	if gemResp.UsageMetadata != nil {
		usage.InputTokens = gemResp.UsageMetadata.PromptTokenCount
		usage.OutputTokens = gemResp.UsageMetadata.CandidatesTokenCount
	}

	return &core.ChatResult{
		Content:      extractText(&gemResp),
		Model:        p.model,
		Provider:     p.id,
		FinishReason: finishReason,
		Usage:        usage,
	}, nil
}
