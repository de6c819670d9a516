package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on a PostgreSQL database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to PostgreSQL and ensures the settings schema
// exists.
func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	if url == "" {
		return nil, fmt.Errorf("postgresql connection URL is required")
	}

	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PostgreSQL URL: %w", err)
	}
	poolCfg.MaxConns = 10

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS providers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			api_key TEXT NOT NULL,
			model TEXT NOT NULL,
			base_url TEXT NOT NULL,
			enabled BOOLEAN DEFAULT TRUE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create providers table: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create settings table: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *PostgresStore) Load(ctx context.Context) (*Config, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, name, api_key, model, base_url, enabled FROM providers")
	if err != nil {
		return nil, fmt.Errorf("failed to query providers: %w", err)
	}
	defer rows.Close()

	cfg := &Config{Providers: make(map[string]ProviderConfig)}
	for rows.Next() {
		var p ProviderConfig
		if err := rows.Scan(&p.ID, &p.Name, &p.APIKey, &p.Model, &p.BaseURL, &p.Enabled); err != nil {
			return nil, fmt.Errorf("failed to scan provider row: %w", err)
		}
		cfg.Providers[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read provider rows: %w", err)
	}

	cfg.DefaultProvider = "claude"
	var def string
	err = s.pool.QueryRow(ctx,
		"SELECT value FROM settings WHERE key = 'default_provider'").Scan(&def)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("failed to read default provider: %w", err)
	default:
		cfg.DefaultProvider = def
	}

	return cfg, nil
}

// Provider implements Store.
func (s *PostgresStore) Provider(ctx context.Context, id string) (*ProviderConfig, error) {
	var p ProviderConfig
	err := s.pool.QueryRow(ctx,
		"SELECT id, name, api_key, model, base_url, enabled FROM providers WHERE id = $1", id).
		Scan(&p.ID, &p.Name, &p.APIKey, &p.Model, &p.BaseURL, &p.Enabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read provider %s: %w", id, err)
	}
	return &p, nil
}

// DefaultProvider implements Store.
func (s *PostgresStore) DefaultProvider(ctx context.Context) (string, error) {
	var def string
	err := s.pool.QueryRow(ctx,
		"SELECT value FROM settings WHERE key = 'default_provider'").Scan(&def)
	if errors.Is(err, pgx.ErrNoRows) {
		return "claude", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read default provider: %w", err)
	}
	return def, nil
}

// Save implements Store.
func (s *PostgresStore) Save(ctx context.Context, cfg *Config) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM providers"); err != nil {
		return fmt.Errorf("failed to clear providers: %w", err)
	}
	for id, p := range cfg.Providers {
		_, err := tx.Exec(ctx, `
			INSERT INTO providers (id, name, api_key, model, base_url, enabled)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			id, p.Name, p.APIKey, p.Model, p.BaseURL, p.Enabled)
		if err != nil {
			return fmt.Errorf("failed to insert provider %s: %w", id, err)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO settings (key, value) VALUES ('default_provider', $1)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		cfg.DefaultProvider)
	if err != nil {
		return fmt.Errorf("failed to save default provider: %w", err)
	}

	return tx.Commit(ctx)
}

// UpdateProvider implements Store.
func (s *PostgresStore) UpdateProvider(ctx context.Context, id string, updates ProviderUpdates) (*ProviderConfig, error) {
	current, err := s.Provider(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, id)
	}

	applyUpdates(current, updates)

	_, err = s.pool.Exec(ctx, `
		UPDATE providers SET name = $1, api_key = $2, model = $3, base_url = $4, enabled = $5
		WHERE id = $6`,
		current.Name, current.APIKey, current.Model, current.BaseURL, current.Enabled, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update provider %s: %w", id, err)
	}
	return current, nil
}

// SetDefaultProvider implements Store.
func (s *PostgresStore) SetDefaultProvider(ctx context.Context, id string) error {
	p, err := s.Provider(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%w: %s", ErrProviderNotFound, id)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO settings (key, value) VALUES ('default_provider', $1)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, id)
	if err != nil {
		return fmt.Errorf("failed to set default provider: %w", err)
	}
	return nil
}

// Reset implements Store.
func (s *PostgresStore) Reset(ctx context.Context) (*Config, error) {
	cfg := DefaultConfig()
	if err := s.Save(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
