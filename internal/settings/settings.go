// Package settings persists per-provider configuration (API keys, models,
// enable flags, default provider) behind a Store interface with SQLite and
// PostgreSQL backends.
package settings

import (
	"context"
	"errors"
	"strings"
)

// ErrProviderNotFound is returned by update operations targeting an
// unconfigured provider id.
var ErrProviderNotFound = errors.New("provider not found")

// ProviderConfig is the persisted descriptor for one provider.
type ProviderConfig struct {
	ID      string `json:"-"`
	Name    string `json:"name"`
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
	BaseURL string `json:"base_url"`
	Enabled bool   `json:"enabled"`
}

// Config is the full persisted configuration snapshot.
type Config struct {
	Providers       map[string]ProviderConfig `json:"providers"`
	DefaultProvider string                    `json:"default_provider"`
}

// ProviderUpdates carries a partial provider update. Nil fields are left
// unchanged.
type ProviderUpdates struct {
	APIKey  *string `json:"api_key"`
	Model   *string `json:"model"`
	BaseURL *string `json:"base_url"`
	Enabled *bool   `json:"enabled"`
}

// Empty reports whether the update carries no changes.
func (u ProviderUpdates) Empty() bool {
	return u.APIKey == nil && u.Model == nil && u.BaseURL == nil && u.Enabled == nil
}

// Store is the persisted configuration collaborator the gateway core reads
// from. Reads are safe to race during request handling; writes are
// serialized by the backing database.
type Store interface {
	// Load returns the full configuration snapshot.
	Load(ctx context.Context) (*Config, error)

	// Provider returns the descriptor for id, or nil if absent.
	Provider(ctx context.Context, id string) (*ProviderConfig, error)

	// DefaultProvider returns the configured default provider id.
	DefaultProvider(ctx context.Context) (string, error)

	// Save replaces the full configuration.
	Save(ctx context.Context, cfg *Config) error

	// UpdateProvider applies a partial update to one provider and returns
	// the updated descriptor. Returns ErrProviderNotFound for unknown ids.
	UpdateProvider(ctx context.Context, id string, updates ProviderUpdates) (*ProviderConfig, error)

	// SetDefaultProvider changes the default provider id. Returns
	// ErrProviderNotFound if the id is not configured.
	SetDefaultProvider(ctx context.Context, id string) error

	// Reset replaces the configuration with the environment-seeded defaults.
	Reset(ctx context.Context) (*Config, error)

	// Close releases the underlying database connection.
	Close() error
}

// MaskKey masks an API key for display: first 8 and last 4 characters kept,
// everything in between starred. Keys of 12 characters or fewer are fully
// starred.
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 12 {
		return strings.Repeat("*", len(key))
	}
	return key[:8] + strings.Repeat("*", len(key)-12) + key[len(key)-4:]
}
