package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Storage.Type != "sqlite" {
		t.Errorf("storage type = %q, want sqlite", cfg.Storage.Type)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Endpoint != "/metrics" {
		t.Errorf("metrics config = %+v", cfg.Metrics)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: "9090"
storage:
  type: sqlite
  sqlite_path: /tmp/other.db
metrics:
  enabled: false
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Storage.SQLitePath != "/tmp/other.db" {
		t.Errorf("sqlite path = %q", cfg.Storage.SQLitePath)
	}
	if cfg.Metrics.Enabled {
		t.Error("metrics should be disabled by the file")
	}
	// unset file fields keep their defaults
	if cfg.Server.BodySizeLimit != "1M" {
		t.Errorf("body size limit = %q, want default", cfg.Server.BodySizeLimit)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: \"9090\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("port = %q, environment must win over the file", cfg.Server.Port)
	}
}

func TestLoadPostgresRequiresURL(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "postgresql")
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(""); err == nil {
		t.Error("expected an error for postgresql storage without a URL")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected an error for a malformed config file")
	}
}
