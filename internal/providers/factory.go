// Package providers provides the adapter factory and the registry that
// resolves provider ids into ready-to-call adapters.
package providers

import (
	"sort"

	"aigateway/internal/core"
	"aigateway/internal/settings"
)

// Builder creates an adapter instance from a provider descriptor.
type Builder func(cfg settings.ProviderConfig) core.Provider

// builders holds all registered adapter builders, keyed by provider id.
var builders = make(map[string]Builder)

// Register associates a provider id with its adapter builder.
// Called from init() functions in the adapter packages; importing an adapter
// package is what makes its provider ids available.
func Register(providerID string, builder Builder) {
	builders[providerID] = builder
}

// Lookup returns the builder registered for a provider id.
func Lookup(providerID string) (Builder, bool) {
	b, ok := builders[providerID]
	return b, ok
}

// RegisteredIDs returns all provider ids with a registered adapter, sorted.
func RegisteredIDs() []string {
	ids := make([]string, 0, len(builders))
	for id := range builders {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
