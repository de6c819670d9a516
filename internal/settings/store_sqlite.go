package settings

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the SQLite database at path and
// ensures the settings schema exists. WAL mode allows concurrent reads while
// a settings write is in flight.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "data/config.db"
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	dsn := fmt.Sprintf("%s?_journal=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// SQLite only allows one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS providers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			api_key TEXT NOT NULL,
			model TEXT NOT NULL,
			base_url TEXT NOT NULL,
			enabled INTEGER DEFAULT 1
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create providers table: %w", err)
	}

	_, err = s.db.Exec(`
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
func (s *SQLiteStore) Load(ctx context.Context) (*Config, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, api_key, model, base_url, enabled FROM providers")
	if err != nil {
		return nil, fmt.Errorf("failed to query providers: %w", err)
	}
	defer rows.Close()

	cfg := &Config{Providers: make(map[string]ProviderConfig)}
	for rows.Next() {
		var p ProviderConfig
		var enabled int
		if err := rows.Scan(&p.ID, &p.Name, &p.APIKey, &p.Model, &p.BaseURL, &enabled); err != nil {
			return nil, fmt.Errorf("failed to scan provider row: %w", err)
		}
		p.Enabled = enabled != 0
		cfg.Providers[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read provider rows: %w", err)
	}

	cfg.DefaultProvider = "claude"
	var def string
	err = s.db.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE key = 'default_provider'").Scan(&def)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return nil, fmt.Errorf("failed to read default provider: %w", err)
	default:
		cfg.DefaultProvider = def
	}

	return cfg, nil
}

// Provider implements Store.
func (s *SQLiteStore) Provider(ctx context.Context, id string) (*ProviderConfig, error) {
	var p ProviderConfig
	var enabled int
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, api_key, model, base_url, enabled FROM providers WHERE id = ?", id).
		Scan(&p.ID, &p.Name, &p.APIKey, &p.Model, &p.BaseURL, &enabled)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read provider %s: %w", id, err)
	}
	p.Enabled = enabled != 0
	return &p, nil
}

// DefaultProvider implements Store.
func (s *SQLiteStore) DefaultProvider(ctx context.Context) (string, error) {
	var def string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE key = 'default_provider'").Scan(&def)
	if err == sql.ErrNoRows {
		return "claude", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read default provider: %w", err)
	}
	return def, nil
}

// Save implements Store. The snapshot replaces all persisted rows inside one
// transaction.
func (s *SQLiteStore) Save(ctx context.Context, cfg *Config) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM providers"); err != nil {
		return fmt.Errorf("failed to clear providers: %w", err)
	}
	for id, p := range cfg.Providers {
		enabled := 0
		if p.Enabled {
			enabled = 1
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO providers (id, name, api_key, model, base_url, enabled)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, p.Name, p.APIKey, p.Model, p.BaseURL, enabled)
		if err != nil {
			return fmt.Errorf("failed to insert provider %s: %w", id, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO settings (key, value) VALUES ('default_provider', ?)`,
		cfg.DefaultProvider)
	if err != nil {
		return fmt.Errorf("failed to save default provider: %w", err)
	}

	return tx.Commit()
}

// UpdateProvider implements Store.
func (s *SQLiteStore) UpdateProvider(ctx context.Context, id string, updates ProviderUpdates) (*ProviderConfig, error) {
	current, err := s.Provider(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, id)
	}

	applyUpdates(current, updates)

	enabled := 0
	if current.Enabled {
		enabled = 1
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE providers SET name = ?, api_key = ?, model = ?, base_url = ?, enabled = ?
		WHERE id = ?`,
		current.Name, current.APIKey, current.Model, current.BaseURL, enabled, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update provider %s: %w", id, err)
	}
	return current, nil
}

// SetDefaultProvider implements Store.
func (s *SQLiteStore) SetDefaultProvider(ctx context.Context, id string) error {
	p, err := s.Provider(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%w: %s", ErrProviderNotFound, id)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO settings (key, value) VALUES ('default_provider', ?)`, id)
	if err != nil {
		return fmt.Errorf("failed to set default provider: %w", err)
	}
	return nil
}

// Reset implements Store.
func (s *SQLiteStore) Reset(ctx context.Context) (*Config, error) {
	cfg := DefaultConfig()
	if err := s.Save(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// applyUpdates merges a partial update into a descriptor.
func applyUpdates(p *ProviderConfig, updates ProviderUpdates) {
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
}
