package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aigateway/config"
	"aigateway/internal/core"
	"aigateway/internal/gateway"
	"aigateway/internal/providers"
	"aigateway/internal/settings"
)

// memStore is an in-memory settings.Store for handler tests.
type memStore struct {
	cfg settings.Config
}

func (m *memStore) Load(ctx context.Context) (*settings.Config, error) {
	return &m.cfg, nil
}

func (m *memStore) Provider(ctx context.Context, id string) (*settings.ProviderConfig, error) {
	p, ok := m.cfg.Providers[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memStore) DefaultProvider(ctx context.Context) (string, error) {
	return m.cfg.DefaultProvider, nil
}

func (m *memStore) Save(ctx context.Context, cfg *settings.Config) error {
	m.cfg = *cfg
	return nil
}

func (m *memStore) UpdateProvider(ctx context.Context, id string, updates settings.ProviderUpdates) (*settings.ProviderConfig, error) {
	p, ok := m.cfg.Providers[id]
	if !ok {
		return nil, settings.ErrProviderNotFound
	}
	if updates.APIKey != nil {
		p.APIKey = *updates.APIKey
	}
	if updates.Model != nil {
		p.Model = *updates.Model
	}
	if updates.BaseURL != nil {
		p.BaseURL = *updates.BaseURL
	}
	if updates.Enabled != nil {
		p.Enabled = *updates.Enabled
	}
	m.cfg.Providers[id] = p
	return &p, nil
}

func (m *memStore) SetDefaultProvider(ctx context.Context, id string) error {
	if _, ok := m.cfg.Providers[id]; !ok {
		return settings.ErrProviderNotFound
	}
	m.cfg.DefaultProvider = id
	return nil
}

func (m *memStore) Reset(ctx context.Context) (*settings.Config, error) {
	m.cfg = *settings.DefaultConfig()
	return &m.cfg, nil
}

func (m *memStore) Close() error { return nil }

type echoAdapter struct{}

func (echoAdapter) Chat(ctx context.Context, req *core.ChatRequest) (*core.ChatResult, error) {
	return &core.ChatResult{
		Content:  "echo: " + req.Messages[len(req.Messages)-1].Content,
		Model:    "test-model",
		Provider: req.Provider,
	}, nil
}

func newTestServer(t *testing.T) (*Server, *memStore) {
	t.Helper()
	providers.Register("srv-echo", func(cfg settings.ProviderConfig) core.Provider {
		return echoAdapter{}
	})

	store := &memStore{cfg: settings.Config{
		DefaultProvider: "srv-echo",
		Providers: map[string]settings.ProviderConfig{
			"srv-echo": {
				ID:      "srv-echo",
				Name:    "Echo",
				APIKey:  "sk-test-key-for-echo-provider",
				Model:   "test-model",
				BaseURL: "https://example.invalid",
				Enabled: true,
			},
			"srv-dead": {
				ID:      "srv-dead",
				Name:    "Dead",
				APIKey:  "",
				Model:   "dead-model",
				Enabled: false,
			},
		},
	}}

	cfg := config.Default()
	cfg.Metrics.Enabled = false
	gw := gateway.New(store, providers.NewRegistry(store), nil)
	return New(cfg, gw, store), store
}

func doJSON(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestChatRequestDefaults(t *testing.T) {
	req := chatRequest{Messages: []core.Message{{Role: "user", Content: "hi"}}}
	got := req.toCore()
	if got.MaxTokens != defaultMaxTokens {
		t.Errorf("MaxTokens = %d, want default %d", got.MaxTokens, defaultMaxTokens)
	}
	if got.Temperature != defaultTemperature {
		t.Errorf("Temperature = %v, want default %v", got.Temperature, defaultTemperature)
	}

	// an explicit zero temperature must survive the defaulting
	zero := 0.0
	req = chatRequest{Temperature: &zero, MaxTokens: 10}
	got = req.toCore()
	if got.Temperature != 0 {
		t.Errorf("explicit zero temperature overridden to %v", got.Temperature)
	}
	if got.MaxTokens != 10 {
		t.Errorf("MaxTokens = %d, want 10", got.MaxTokens)
	}
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(s, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestChatEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(s, http.MethodPost, "/api/ai/chat",
		`{"provider": "srv-echo", "messages": [{"role": "user", "content": "hello"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var result core.ChatResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Content != "echo: hello" {
		t.Errorf("content = %q", result.Content)
	}
}

func TestChatEndpointDefaultsProvider(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(s, http.MethodPost, "/api/ai/chat",
		`{"messages": [{"role": "user", "content": "hi"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestChatEndpointErrorMapping(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantType   string
	}{
		{
			name:       "unknown provider is 404",
			body:       `{"provider": "ghost", "messages": [{"role": "user", "content": "x"}]}`,
			wantStatus: http.StatusNotFound,
			wantType:   "not_found_error",
		},
		{
			name:       "disabled provider is 400",
			body:       `{"provider": "srv-dead", "messages": [{"role": "user", "content": "x"}]}`,
			wantStatus: http.StatusBadRequest,
			wantType:   "provider_disabled_error",
		},
		{
			name:       "empty messages is 400",
			body:       `{"provider": "srv-echo", "messages": []}`,
			wantStatus: http.StatusBadRequest,
			wantType:   "invalid_request_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(s, http.MethodPost, "/api/ai/chat", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var payload struct {
				Error struct {
					Type string `json:"type"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
				t.Fatalf("failed to decode error body: %v", err)
			}
			if payload.Error.Type != tt.wantType {
				t.Errorf("error type = %q, want %q", payload.Error.Type, tt.wantType)
			}
		})
	}
}

func TestListProvidersEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(s, http.MethodGet, "/api/ai/providers", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var payload struct {
		Providers []core.ProviderStatus `json:"providers"`
		Default   string                `json:"default"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Default != "srv-echo" {
		t.Errorf("default = %q", payload.Default)
	}
	if len(payload.Providers) != 2 {
		t.Fatalf("got %d providers, want 2", len(payload.Providers))
	}
	// never raw keys on this surface
	if strings.Contains(rec.Body.String(), "sk-test-key") {
		t.Error("provider listing leaked an API key")
	}
}

func TestProbeEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(s, http.MethodPost, "/api/ai/test",
		`{"providers": ["srv-echo", "srv-dead"], "message": "ping"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var payload struct {
		Results []core.ProbeResult `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(payload.Results))
	}
	if !payload.Results[0].Success {
		t.Errorf("srv-echo probe failed: %s", payload.Results[0].Error)
	}
	// disabled provider yields a failed outcome, not an HTTP error
	if payload.Results[1].Success {
		t.Error("srv-dead probe should fail")
	}
}

func TestProbeEndpointDefaultsToAllProviders(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(s, http.MethodPost, "/api/ai/test", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload struct {
		Results []core.ProbeResult `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload.Results) != 2 {
		t.Errorf("got %d results, want one per configured provider", len(payload.Results))
	}
}

func TestSettingsProvidersEndpointMasksKeys(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doJSON(s, http.MethodGet, "/api/settings/providers", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "sk-test-key-for-echo-provider") {
		t.Error("settings listing leaked a raw API key")
	}
	if !strings.Contains(body, settings.MaskKey("sk-test-key-for-echo-provider")) {
		t.Error("settings listing missing the masked key")
	}
}

func TestUpdateProviderEndpoint(t *testing.T) {
	s, store := newTestServer(t)
	rec := doJSON(s, http.MethodPut, "/api/settings/provider/srv-echo",
		`{"model": "new-model", "enabled": false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	updated := store.cfg.Providers["srv-echo"]
	if updated.Model != "new-model" || updated.Enabled {
		t.Errorf("update not applied: %+v", updated)
	}
	// untouched key survives
	if updated.APIKey != "sk-test-key-for-echo-provider" {
		t.Errorf("api key changed unexpectedly: %q", updated.APIKey)
	}
}

func TestUpdateProviderEndpointValidation(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doJSON(s, http.MethodPut, "/api/settings/provider/srv-echo", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty update: status = %d, want 400", rec.Code)
	}

	rec = doJSON(s, http.MethodPut, "/api/settings/provider/ghost", `{"model": "m"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", rec.Code)
	}
}

func TestSetDefaultProviderEndpoint(t *testing.T) {
	s, store := newTestServer(t)

	rec := doJSON(s, http.MethodPut, "/api/settings/default-provider",
		`{"provider": "srv-dead"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if store.cfg.DefaultProvider != "srv-dead" {
		t.Errorf("default = %q, want srv-dead", store.cfg.DefaultProvider)
	}

	rec = doJSON(s, http.MethodPut, "/api/settings/default-provider",
		`{"provider": "ghost"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", rec.Code)
	}
}

func TestResetEndpoint(t *testing.T) {
	s, store := newTestServer(t)
	rec := doJSON(s, http.MethodPost, "/api/settings/reset", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(store.cfg.Providers) < 5 {
		t.Errorf("reset left %d providers, want the full default set", len(store.cfg.Providers))
	}
}
