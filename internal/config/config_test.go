package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":3001" {
		t.Fatalf("http addr %q", cfg.HTTPAddr)
	}
	if cfg.RedisAddr != "127.0.0.1:6379" {
		t.Fatalf("redis addr %q", cfg.RedisAddr)
	}
	if cfg.TransferMaxAttempts != 8 || cfg.TransferTimeout != 3*time.Second {
		t.Fatalf("transfer budget %d/%s", cfg.TransferMaxAttempts, cfg.TransferTimeout)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("origins %v", cfg.AllowedOrigins)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TUNEGRID_HTTP_ADDR", ":9999")
	t.Setenv("TUNEGRID_TRANSFER_MAX_ATTEMPTS", "200")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Fatalf("http addr %q", cfg.HTTPAddr)
	}
	// Out-of-range values are clamped, not rejected.
	if cfg.TransferMaxAttempts != 64 {
		t.Fatalf("max attempts %d, want clamped 64", cfg.TransferMaxAttempts)
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "http_addr: \":8080\"\nredis_addr: \"redis:6379\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.RedisAddr != "redis:6379" {
		t.Fatalf("overlay not applied: %+v", cfg)
	}
	// Keys absent from the file keep their defaults.
	if cfg.LogLevel != "info" {
		t.Fatalf("log level %q", cfg.LogLevel)
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":3001" {
		t.Fatalf("http addr %q", cfg.HTTPAddr)
	}
}
