package core

import "context"

// Provider is the single capability every upstream adapter implements.
// An adapter is constructed per call from the provider's stored
// configuration (API key, model, base URL) and performs exactly one
// upstream round-trip per Chat invocation.
type Provider interface {
	// Chat sends the normalized request upstream and returns the
	// normalized result. A non-success upstream status or transport
	// failure is returned as a *GatewayError, never folded into the
	// result.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)
}
