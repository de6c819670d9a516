package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"aigateway/internal/core"
)

// Request defaults applied when the client omits the tuning fields.
const (
	defaultMaxTokens    = 4096
	defaultTemperature  = 0.7
	defaultProbeMessage = "Hello! Reply with a short greeting."
	probeMaxTokens      = 256
)

// chatRequest is the wire shape of POST /api/ai/chat. Temperature is a
// pointer so an explicit 0 survives the defaulting.
type chatRequest struct {
	Provider     string         `json:"provider"`
	Messages     []core.Message `json:"messages"`
	SystemPrompt string         `json:"system_prompt"`
	MaxTokens    int            `json:"max_tokens"`
	Temperature  *float64       `json:"temperature"`
}

func (r *chatRequest) toCore() *core.ChatRequest {
	maxTokens := r.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := defaultTemperature
	if r.Temperature != nil {
		temperature = *r.Temperature
	}
	return &core.ChatRequest{
		Provider:     r.Provider,
		Messages:     r.Messages,
		SystemPrompt: r.SystemPrompt,
		MaxTokens:    maxTokens,
		Temperature:  temperature,
	}
}

func (s *Server) handleChat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return handleError(c, core.NewInvalidRequestError("invalid request body", err))
	}

	result, err := s.gateway.Chat(c.Request().Context(), req.toCore())
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleListProviders(c echo.Context) error {
	ctx := c.Request().Context()

	statuses, err := s.gateway.ListProviders(ctx)
	if err != nil {
		return handleError(c, err)
	}
	def, err := s.store.DefaultProvider(ctx)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"providers": statuses,
		"default":   def,
	})
}

// probeRequest is the wire shape of POST /api/ai/test. An empty provider
// list means "probe everything configured".
type probeRequest struct {
	Providers   []string `json:"providers"`
	Message     string   `json:"message"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature *float64 `json:"temperature"`
}

func (s *Server) handleProbe(c echo.Context) error {
	var req probeRequest
	if err := c.Bind(&req); err != nil {
		return handleError(c, core.NewInvalidRequestError("invalid request body", err))
	}

	ctx := c.Request().Context()

	ids := req.Providers
	if len(ids) == 0 {
		all, err := s.gateway.ConfiguredProviderIDs(ctx)
		if err != nil {
			return handleError(c, err)
		}
		ids = all
	}

	message := req.Message
	if message == "" {
		message = defaultProbeMessage
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = probeMaxTokens
	}
	temperature := defaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	results := s.gateway.Probe(ctx, ids, message, maxTokens, temperature)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"results": results,
	})
}
