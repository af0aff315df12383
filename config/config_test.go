package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/quotagate/quotagate/domain/tier"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quotagate.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected default host, got %q", cfg.Server.Host)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected default driver sqlite, got %q", cfg.Database.Driver)
	}
	if cfg.Database.DSN != "quotagate.db" {
		t.Errorf("expected default DSN, got %q", cfg.Database.DSN)
	}
	if cfg.Auth.Header != "X-Service-Key" {
		t.Errorf("expected default auth header, got %q", cfg.Auth.Header)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("expected default logging, got %+v", cfg.Logging)
	}
	if cfg.Enforcement.Strict {
		t.Errorf("expected soft enforcement by default")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Errorf("expected error for missing file, got nil")
	}
}

func TestLoad_InvalidDriver(t *testing.T) {
	path := writeConfig(t, "database:\n  driver: postgres\n")

	if _, err := Load(path); err == nil {
		t.Errorf("expected error for unsupported driver, got nil")
	}
}

func TestLoad_AuthRequiresHash(t *testing.T) {
	path := writeConfig(t, "auth:\n  enabled: true\n")

	if _, err := Load(path); err == nil {
		t.Errorf("expected error when auth enabled without key hash, got nil")
	}
}

func TestLoad_TierOverride(t *testing.T) {
	path := writeConfig(t, `
tiers:
  - name: FREE
    uploads_per_month: 8
    audio_minutes_per_month: 15
    contracts_per_month: 5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	free := catalog.Limits(tier.Free)
	if free.UploadsPerMonth != 8 {
		t.Errorf("expected overridden uploads=8, got %d", free.UploadsPerMonth)
	}

	// Untouched tiers keep the built-in table
	basic := catalog.Limits(tier.Basic)
	if basic.UploadsPerMonth != 20 {
		t.Errorf("expected BASIC uploads=20, got %d", basic.UploadsPerMonth)
	}
}

func TestLoad_UnknownTierOverrideRejected(t *testing.T) {
	path := writeConfig(t, "tiers:\n  - name: GOLD\n    uploads_per_month: 8\n")

	if _, err := Load(path); err == nil {
		t.Errorf("expected error for unknown tier override, got nil")
	}
}

func TestLoad_NonMonotonicOverrideRejected(t *testing.T) {
	// FREE raised above BASIC regresses the upgrade ladder
	path := writeConfig(t, `
tiers:
  - name: FREE
    uploads_per_month: 100
    audio_minutes_per_month: 10
    contracts_per_month: 3
`)

	if _, err := Load(path); err == nil {
		t.Errorf("expected monotonicity error, got nil")
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")

	t.Setenv("QUOTAGATE_SERVER_PORT", "7070")
	t.Setenv("QUOTAGATE_ENFORCEMENT_STRICT", "true")
	t.Setenv("QUOTAGATE_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("expected env port to win, got %d", cfg.Server.Port)
	}
	if !cfg.Enforcement.Strict {
		t.Errorf("expected strict enforcement from env")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level from env, got %q", cfg.Logging.Level)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("QUOTAGATE_DATABASE_DRIVER", "memory")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Driver != "memory" {
		t.Errorf("expected memory driver, got %q", cfg.Database.Driver)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
}

func TestHasEnvConfig(t *testing.T) {
	if HasEnvConfig() {
		t.Skip("QUOTAGATE_* already set in environment")
	}
	t.Setenv("QUOTAGATE_SERVER_PORT", "8081")
	if !HasEnvConfig() {
		t.Errorf("expected HasEnvConfig=true with QUOTAGATE_SERVER_PORT set")
	}
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes", "on"} {
		if !parseBool(v) {
			t.Errorf("expected parseBool(%q)=true", v)
		}
	}
	for _, v := range []string{"0", "false", "off", "", "banana"} {
		if parseBool(v) {
			t.Errorf("expected parseBool(%q)=false", v)
		}
	}
}
