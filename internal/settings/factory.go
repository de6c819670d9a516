package settings

import (
	"context"
	"fmt"
)

// Backend type constants.
const (
	TypeSQLite     = "sqlite"
	TypePostgreSQL = "postgresql"
)

// StoreConfig selects and configures the settings backend.
type StoreConfig struct {
	// Type is "sqlite" or "postgresql"
	Type string
	// SQLitePath is the database file path (sqlite only)
	SQLitePath string
	// PostgresURL is the connection string (postgresql only)
	PostgresURL string
	// MigrateJSONPath is an optional legacy ai-config.json to migrate from
	MigrateJSONPath string
}

// New opens the configured backend and runs the load chain: existing rows →
// legacy JSON file migration → environment-seeded defaults.
func New(ctx context.Context, cfg StoreConfig) (Store, error) {
	var store Store
	var err error

	switch cfg.Type {
	case TypeSQLite, "":
		store, err = NewSQLiteStore(cfg.SQLitePath)
	case TypePostgreSQL:
		store, err = NewPostgresStore(ctx, cfg.PostgresURL)
	default:
		return nil, fmt.Errorf("unknown settings storage type: %s (valid: sqlite, postgresql)", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	if err := Initialize(ctx, store, cfg.MigrateJSONPath); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
