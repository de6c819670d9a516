package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
)

// Initialize seeds an empty store. The chain mirrors the legacy deployment:
//  1. rows already in the database win,
//  2. otherwise a legacy ai-config.json file is migrated into the database,
//  3. otherwise environment-seeded defaults are written.
func Initialize(ctx context.Context, store Store, jsonPath string) error {
	cfg, err := store.Load(ctx)
	if err != nil {
		return err
	}
	if len(cfg.Providers) > 0 {
		return nil
	}

	if jsonPath != "" {
		migrated, err := loadJSONFile(jsonPath)
		if err != nil {
			return err
		}
		if migrated != nil {
			if err := store.Save(ctx, migrated); err != nil {
				return fmt.Errorf("failed to migrate %s: %w", jsonPath, err)
			}
			slog.Info("migrated legacy JSON configuration",
				"path", jsonPath,
				"providers", len(migrated.Providers),
			)
			return nil
		}
	}

	defaults := DefaultConfig()
	if err := store.Save(ctx, defaults); err != nil {
		return fmt.Errorf("failed to seed default configuration: %w", err)
	}
	slog.Info("seeded default provider configuration",
		"providers", len(defaults.Providers),
		"default", defaults.DefaultProvider,
	)
	return nil
}

// loadJSONFile parses a legacy ai-config.json. Returns nil (no error) when
// the file does not exist.
func loadJSONFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var file struct {
		Providers       map[string]ProviderConfig `json:"providers"`
		DefaultProvider string                    `json:"default_provider"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg := &Config{
		Providers:       make(map[string]ProviderConfig, len(file.Providers)),
		DefaultProvider: file.DefaultProvider,
	}
	if cfg.DefaultProvider == "" {
		cfg.DefaultProvider = "claude"
	}
	for id, p := range file.Providers {
		p.ID = id
		cfg.Providers[id] = p
	}
	return cfg, nil
}
