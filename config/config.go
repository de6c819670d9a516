// Package config loads gateway configuration from an optional YAML file
// with environment variable overrides. Environment always wins.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full gateway configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port          string `yaml:"port"`
	BodySizeLimit string `yaml:"body_size_limit"`
	StaticDir     string `yaml:"static_dir"`
}

// StorageConfig selects and parameterizes the settings store backend.
type StorageConfig struct {
	Type            string `yaml:"type"`
	SQLitePath      string `yaml:"sqlite_path"`
	PostgresURL     string `yaml:"postgres_url"`
	MigrateJSONPath string `yaml:"migrate_json_path"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          "8080",
			BodySizeLimit: "1M",
			StaticDir:     "static",
		},
		Storage: StorageConfig{
			Type:            "sqlite",
			SQLitePath:      "data/config.db",
			MigrateJSONPath: "ai-config.json",
		},
		Metrics: MetricsConfig{
			Enabled:  true,
			Endpoint: "/metrics",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// it exists), then environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if cfg.Storage.Type == "postgresql" && cfg.Storage.PostgresURL == "" {
		return nil, fmt.Errorf("storage type is postgresql but no connection URL is set")
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.BodySizeLimit, "BODY_SIZE_LIMIT")
	setString(&c.Server.StaticDir, "STATIC_DIR")

	setString(&c.Storage.Type, "STORAGE_TYPE")
	setString(&c.Storage.SQLitePath, "SQLITE_PATH")
	setString(&c.Storage.PostgresURL, "DATABASE_URL")
	setString(&c.Storage.MigrateJSONPath, "LEGACY_CONFIG_PATH")

	setBool(&c.Metrics.Enabled, "METRICS_ENABLED")
	setString(&c.Metrics.Endpoint, "METRICS_ENDPOINT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}
