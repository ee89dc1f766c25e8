package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadFromDefaults(t *testing.T) {
	t.Setenv("PRAXIS_JWT_SECRET", testSecret)

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "8080")
	}
	if cfg.NATS.Stream != "PRAXIS" {
		t.Errorf("NATS.Stream = %q, want %q", cfg.NATS.Stream, "PRAXIS")
	}
	if cfg.Auth.AccessTokenTTL != 15*time.Minute {
		t.Errorf("Auth.AccessTokenTTL = %v, want 15m", cfg.Auth.AccessTokenTTL)
	}
	if len(cfg.AI.Priority) != 3 {
		t.Errorf("AI.Priority = %v, want 3 providers", cfg.AI.Priority)
	}
}

func TestLoadFromYAMLOverridesDefaults(t *testing.T) {
	t.Setenv("PRAXIS_JWT_SECRET", testSecret)

	path := filepath.Join(t.TempDir(), "praxis.yaml")
	yaml := `
server:
  port: "9090"
rate:
  requests_per_window: 50
  window: 30s
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "9090")
	}
	if cfg.Rate.RequestsPerWindow != 50 {
		t.Errorf("Rate.RequestsPerWindow = %d, want 50", cfg.Rate.RequestsPerWindow)
	}
	if cfg.Rate.Window != 30*time.Second {
		t.Errorf("Rate.Window = %v, want 30s", cfg.Rate.Window)
	}
	// untouched sections keep defaults
	if cfg.Breaker.MaxFailures != 5 {
		t.Errorf("Breaker.MaxFailures = %d, want 5", cfg.Breaker.MaxFailures)
	}
}

func TestLoadFromEnvOverridesYAML(t *testing.T) {
	t.Setenv("PRAXIS_JWT_SECRET", testSecret)
	t.Setenv("PRAXIS_PORT", "7070")
	t.Setenv("PRAXIS_AI_PRIORITY", "google, openai")
	t.Setenv("PRAXIS_CACHE_L1_TTL", "90s")
	t.Setenv("PRAXIS_MAX_BODY_BYTES", "2097152")

	path := filepath.Join(t.TempDir(), "praxis.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: \"9090\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "7070")
	}
	if len(cfg.AI.Priority) != 2 || cfg.AI.Priority[0] != "google" || cfg.AI.Priority[1] != "openai" {
		t.Errorf("AI.Priority = %v, want [google openai]", cfg.AI.Priority)
	}
	if cfg.Cache.L1TTL != 90*time.Second {
		t.Errorf("Cache.L1TTL = %v, want 90s", cfg.Cache.L1TTL)
	}
	if cfg.Server.MaxBodyBytes != 2<<20 {
		t.Errorf("Server.MaxBodyBytes = %d, want 2 MB", cfg.Server.MaxBodyBytes)
	}
}

func TestLoadFromRejectsMissingSecret(t *testing.T) {
	t.Setenv("PRAXIS_JWT_SECRET", "")

	if _, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFrom() = nil error without jwt secret, want error")
	}
}

func TestLoadFromRejectsShortSecret(t *testing.T) {
	t.Setenv("PRAXIS_JWT_SECRET", "too-short")

	if _, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFrom() = nil error for short jwt secret, want error")
	}
}
