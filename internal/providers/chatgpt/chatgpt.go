// Package chatgpt provides the OpenAI adapter, built on the official
// openai-go client.
package chatgpt

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"aigateway/internal/core"
	"aigateway/internal/httpclient"
	"aigateway/internal/providers"
	"aigateway/internal/settings"
)

func init() {
	providers.Register("openai", func(cfg settings.ProviderConfig) core.Provider {
		return New(cfg)
	})
}

// Provider implements core.Provider for OpenAI chat completions.
type Provider struct {
	client openai.Client
	id     string
	model  string
}

// New creates a ChatGPT adapter from a provider descriptor.
// The gateway never retries upstream calls, so SDK retries are disabled.
func New(cfg settings.ProviderConfig, extraOpts ...option.RequestOption) *Provider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(httpclient.DefaultTimeout),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	opts = append(opts, extraOpts...)

	return &Provider{
		client: openai.NewClient(opts...),
		id:     cfg.ID,
		model:  cfg.Model,
	}
}

// buildMessages converts the normalized request into SDK message params,
// prepending the system prompt as a system-role message.
func buildMessages(req *core.ChatRequest) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case "assistant":
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}
	return messages
}

// Chat implements core.Provider.
func (p *Provider) Chat(ctx context.Context, req *core.ChatRequest) (*core.ChatResult, error) {
	// MaxCompletionTokens, not MaxTokens: the newest models reject the
	// deprecated field name.
	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(p.model),
		Messages:            buildMessages(req),
		Temperature:         openai.Float(req.Temperature),
		MaxCompletionTokens: openai.Int(int64(req.MaxTokens)),
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apierr *openai.Error
		if errors.As(err, &apierr) {
			return nil, core.NewProviderError(p.id, apierr.StatusCode,
				fmt.Sprintf("OpenAI API error (status %d): %s",
					apierr.StatusCode, core.Truncate(apierr.Error(), 500)),
				err)
		}
		return nil, providers.WireError(p.id, err)
	}

	if len(resp.Choices) == 0 {
		return nil, core.NewProviderError(p.id, 0,
			"OpenAI response contained no choices", nil)
	}
	choice := resp.Choices[0]

	return &core.ChatResult{
		Content:      choice.Message.Content,
		Model:        resp.Model,
		Provider:     p.id,
		FinishReason: string(choice.FinishReason),
		Usage: core.Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
	}, nil
}
