package settings

import "os"

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// DefaultConfig builds the initial configuration from environment variables.
// It seeds one descriptor per supported upstream; keys come from the
// conventional provider env vars and are empty when unset (the registry
// rejects calls to uncredentialed providers, it does not hide them).
func DefaultConfig() *Config {
	return &Config{
		DefaultProvider: getenv("DEFAULT_AI_PROVIDER", "claude"),
		Providers: map[string]ProviderConfig{
			"claude": {
				ID:      "claude",
				Name:    "Claude (Anthropic)",
				APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
				Model:   getenv("CLAUDE_MODEL", "claude-sonnet-4-20250514"),
				BaseURL: "https://api.anthropic.com/v1",
				Enabled: true,
			},
			"openai": {
				ID:      "openai",
				Name:    "GPT (OpenAI)",
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				Model:   getenv("OPENAI_MODEL", "gpt-4o"),
				BaseURL: "https://api.openai.com/v1",
				Enabled: true,
			},
			"gemini-pro": {
				ID:      "gemini-pro",
				Name:    "Gemini (Pro)",
				APIKey:  os.Getenv("GOOGLE_API_KEY"),
				Model:   getenv("GEMINI_PRO_MODEL", "gemini-1.5-pro"),
				BaseURL: "https://generativelanguage.googleapis.com/v1beta",
				Enabled: true,
			},
			"gemini-flash": {
				ID:      "gemini-flash",
				Name:    "Gemini (Flash)",
				APIKey:  os.Getenv("GOOGLE_API_KEY"),
				Model:   getenv("GEMINI_FLASH_MODEL", "gemini-2.0-flash-exp"),
				BaseURL: "https://generativelanguage.googleapis.com/v1beta",
				Enabled: true,
			},
			"moonshot": {
				ID:      "moonshot",
				Name:    "Moonshot (Kimi)",
				APIKey:  os.Getenv("MOONSHOT_API_KEY"),
				Model:   getenv("MOONSHOT_MODEL", "kimi-k2-0905-preview"),
				BaseURL: "https://api.moonshot.ai/v1",
				Enabled: true,
			},
			"perplexity": {
				ID:      "perplexity",
				Name:    "Perplexity",
				APIKey:  os.Getenv("PERPLEXITY_API_KEY"),
				Model:   getenv("PERPLEXITY_MODEL", "llama-3.1-sonar-large-128k-online"),
				BaseURL: "https://api.perplexity.ai",
				Enabled: true,
			},
		},
	}
}
