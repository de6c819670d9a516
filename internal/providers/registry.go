package providers

import (
	"context"
	"fmt"

	"aigateway/internal/core"
	"aigateway/internal/settings"
)

// Registry resolves provider ids into adapters using the settings store.
// Pure lookup plus validation; it holds no per-call state.
type Registry struct {
	store settings.Store
}

// NewRegistry creates a registry backed by the given settings store.
func NewRegistry(store settings.Store) *Registry {
	return &Registry{store: store}
}

// Resolve validates the provider id and returns a ready adapter together
// with the descriptor it was built from.
//
// The validation order is significant and must stay: existence → enablement
// → credential → adapter availability, so the reported error names the
// actual cause.
func (r *Registry) Resolve(ctx context.Context, providerID string) (core.Provider, *settings.ProviderConfig, error) {
	desc, err := r.store.Provider(ctx, providerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read provider configuration: %w", err)
	}
	if desc == nil {
		return nil, nil, core.NewNotFoundError(providerID)
	}
	if !desc.Enabled {
		return nil, nil, core.NewProviderDisabledError(providerID)
	}
	if desc.APIKey == "" {
		return nil, nil, core.NewMissingCredentialError(providerID)
	}

	builder, ok := Lookup(providerID)
	if !ok {
		return nil, nil, core.NewUnsupportedProviderError(providerID)
	}

	return builder(*desc), desc, nil
}
