package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"aigateway/internal/core"
)

// probeExcerptLen caps how much of a probe response is echoed back.
const probeExcerptLen = 500

// Probe sends the same test message to every listed provider concurrently
// and waits for all of them. The result slice is aligned to the input ids:
// exactly one outcome per id, in the same order. One provider failing (or
// panicking) never disturbs the others' outcomes.
func (g *Gateway) Probe(ctx context.Context, providerIDs []string, message string, maxTokens int, temperature float64) []core.ProbeResult {
	results := make([]core.ProbeResult, len(providerIDs))

	var wg sync.WaitGroup
	for i, id := range providerIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			results[i] = g.probeOne(ctx, id, message, maxTokens, temperature)
		}(i, id)
	}
	wg.Wait()

	return results
}

func (g *Gateway) probeOne(ctx context.Context, providerID, message string, maxTokens int, temperature float64) (result core.ProbeResult) {
	start := time.Now()
	result = core.ProbeResult{Provider: providerID}

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.Error = fmt.Sprintf("probe panicked: %v", r)
			result.ElapsedMS = time.Since(start).Milliseconds()
		}
	}()

	adapter, desc, err := g.registry.Resolve(ctx, providerID)
	if err != nil {
		result.Error = err.Error()
		result.ElapsedMS = time.Since(start).Milliseconds()
		return result
	}
	result.Model = desc.Model

	req := &core.ChatRequest{
		Provider:    providerID,
		Messages:    []core.Message{{Role: "user", Content: message}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	chatResult, err := adapter.Chat(ctx, req)
	elapsed := time.Since(start)
	g.metrics.ObserveChat(providerID, elapsed, err)
	result.ElapsedMS = elapsed.Milliseconds()

	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.Response = core.Truncate(chatResult.Content, probeExcerptLen)
	result.Model = chatResult.Model
	return result
}
