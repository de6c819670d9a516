// Package gateway is the orchestration core: it turns a normalized chat
// request into exactly one upstream call through the resolved adapter, and
// serves the provider listing and batch probe operations.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"aigateway/internal/core"
	"aigateway/internal/observability"
	"aigateway/internal/providers"
	"aigateway/internal/settings"
)

// Gateway coordinates the settings store, the provider registry and the
// metrics collector. It holds no per-request state.
type Gateway struct {
	store    settings.Store
	registry *providers.Registry
	metrics  *observability.Metrics
}

// New creates a gateway. metrics may be nil.
func New(store settings.Store, registry *providers.Registry, metrics *observability.Metrics) *Gateway {
	return &Gateway{
		store:    store,
		registry: registry,
		metrics:  metrics,
	}
}

// Chat resolves the requested provider (or the configured default when the
// request names none) and performs a single upstream call. There is exactly
// one attempt per request; failures surface to the caller, never trigger a
// retry or a provider switch.
func (g *Gateway) Chat(ctx context.Context, req *core.ChatRequest) (*core.ChatResult, error) {
	if len(req.Messages) == 0 {
		return nil, core.NewInvalidRequestError("messages must not be empty", nil)
	}

	providerID := req.Provider
	if providerID == "" {
		def, err := g.store.DefaultProvider(ctx)
		if err != nil {
			return nil, err
		}
		providerID = def
	}

	adapter, desc, err := g.registry.Resolve(ctx, providerID)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	slog.Info("chat request",
		"request_id", requestID,
		"provider", providerID,
		"model", desc.Model,
		"messages", len(req.Messages),
	)

	start := time.Now()
	result, err := adapter.Chat(ctx, req)
	elapsed := time.Since(start)
	g.metrics.ObserveChat(providerID, elapsed, err)

	if err != nil {
		var gwErr *core.GatewayError
		if errors.As(err, &gwErr) && gwErr.Provider == "" {
			gwErr.Provider = providerID
		}
		slog.Error("chat request failed",
			"request_id", requestID,
			"provider", providerID,
			"elapsed_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return nil, err
	}

	slog.Info("chat request completed",
		"request_id", requestID,
		"provider", providerID,
		"model", result.Model,
		"input_tokens", result.Usage.InputTokens,
		"output_tokens", result.Usage.OutputTokens,
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return result, nil
}

// ListProviders returns the status of every configured provider, sorted by
// id. API keys are reported as presence only.
func (g *Gateway) ListProviders(ctx context.Context) ([]core.ProviderStatus, error) {
	cfg, err := g.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]core.ProviderStatus, 0, len(cfg.Providers))
	for id, desc := range cfg.Providers {
		statuses = append(statuses, core.ProviderStatus{
			ID:        id,
			Name:      desc.Name,
			Model:     desc.Model,
			Enabled:   desc.Enabled,
			HasAPIKey: desc.APIKey != "",
			IsDefault: id == cfg.DefaultProvider,
		})
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].ID < statuses[j].ID })
	return statuses, nil
}

// ConfiguredProviderIDs returns every configured provider id, sorted.
func (g *Gateway) ConfiguredProviderIDs(ctx context.Context) ([]string, error) {
	cfg, err := g.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(cfg.Providers))
	for id := range cfg.Providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
