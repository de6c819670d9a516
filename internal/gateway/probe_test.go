package gateway

import (
	"context"
	"strings"
	"testing"
	"time"

	"aigateway/internal/core"
	"aigateway/internal/providers"
	"aigateway/internal/settings"
)

type slowAdapter struct {
	delay   time.Duration
	content string
}

func (a slowAdapter) Chat(ctx context.Context, req *core.ChatRequest) (*core.ChatResult, error) {
	time.Sleep(a.delay)
	return &core.ChatResult{Content: a.content, Model: "slow-model"}, nil
}

func TestProbeOneOutcomePerInputInOrder(t *testing.T) {
	registerFake(t, "probe-ok", fakeAdapter{
		result: &core.ChatResult{Content: "fine", Model: "m-ok"},
	})
	registerFake(t, "probe-fail", fakeAdapter{
		err: core.NewProviderError("probe-fail", 500, "upstream down", nil),
	})
	registerFake(t, "probe-panic", fakeAdapter{panics: true})

	gw := newTestGateway(settings.Config{
		Providers: map[string]settings.ProviderConfig{
			"probe-ok":    descriptor("probe-ok"),
			"probe-fail":  descriptor("probe-fail"),
			"probe-panic": descriptor("probe-panic"),
		},
	})

	ids := []string{"probe-fail", "probe-ok", "probe-missing", "probe-panic"}
	results := gw.Probe(context.Background(), ids, "ping", 32, 0.7)

	if len(results) != len(ids) {
		t.Fatalf("got %d results, want exactly one per input id", len(results))
	}
	for i, id := range ids {
		if results[i].Provider != id {
			t.Errorf("results[%d].Provider = %q, want %q (input order preserved)", i, results[i].Provider, id)
		}
	}

	if results[0].Success || !strings.Contains(results[0].Error, "upstream down") {
		t.Errorf("failed probe outcome wrong: %+v", results[0])
	}
	if !results[1].Success || results[1].Response != "fine" {
		t.Errorf("successful probe outcome wrong: %+v", results[1])
	}
	if results[1].Model != "m-ok" {
		t.Errorf("successful probe model = %q, want m-ok", results[1].Model)
	}
	// unresolvable id becomes a failed outcome, not a panic or an omission
	if results[2].Success || results[2].Error == "" {
		t.Errorf("unresolvable probe outcome wrong: %+v", results[2])
	}
	// a panicking adapter is contained to its own outcome
	if results[3].Success || !strings.Contains(results[3].Error, "panicked") {
		t.Errorf("panicking probe outcome wrong: %+v", results[3])
	}
}

func TestProbeResponseExcerptTruncated(t *testing.T) {
	long := strings.Repeat("a", 2000)
	registerFake(t, "probe-long", fakeAdapter{
		result: &core.ChatResult{Content: long, Model: "m"},
	})
	gw := newTestGateway(settings.Config{
		Providers: map[string]settings.ProviderConfig{
			"probe-long": descriptor("probe-long"),
		},
	})

	results := gw.Probe(context.Background(), []string{"probe-long"}, "ping", 32, 0.7)
	if len(results[0].Response) != probeExcerptLen+len("...") {
		t.Errorf("excerpt length = %d, want truncation to %d runes", len(results[0].Response), probeExcerptLen)
	}
}

func TestProbeRunsConcurrently(t *testing.T) {
	const delay = 100 * time.Millisecond
	for _, id := range []string{"probe-slow-a", "probe-slow-b", "probe-slow-c"} {
		providers.Register(id, func(cfg settings.ProviderConfig) core.Provider {
			return slowAdapter{delay: delay, content: "done"}
		})
	}
	gw := newTestGateway(settings.Config{
		Providers: map[string]settings.ProviderConfig{
			"probe-slow-a": descriptor("probe-slow-a"),
			"probe-slow-b": descriptor("probe-slow-b"),
			"probe-slow-c": descriptor("probe-slow-c"),
		},
	})

	start := time.Now()
	results := gw.Probe(context.Background(),
		[]string{"probe-slow-a", "probe-slow-b", "probe-slow-c"}, "ping", 32, 0.7)
	elapsed := time.Since(start)

	// three sequential calls would take 3x the delay
	if elapsed > 2*delay {
		t.Errorf("probe took %v, expected concurrent fan-out", elapsed)
	}
	for _, r := range results {
		if !r.Success {
			t.Errorf("probe %s failed: %s", r.Provider, r.Error)
		}
		if r.ElapsedMS < delay.Milliseconds() {
			t.Errorf("probe %s elapsed %dms, want at least the adapter delay", r.Provider, r.ElapsedMS)
		}
	}
}

func TestProbeEmptyInput(t *testing.T) {
	gw := newTestGateway(settings.Config{})
	results := gw.Probe(context.Background(), nil, "ping", 32, 0.7)
	if len(results) != 0 {
		t.Errorf("got %d results for empty input, want 0", len(results))
	}
}
