package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/tabletop")
	t.Setenv("JWT_SECRET_KEY", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseDriver != "postgres" {
		t.Fatalf("expected postgres driver, got %q", cfg.DatabaseDriver)
	}
	if cfg.ServerPort != 8080 {
		t.Fatalf("expected port 8080, got %d", cfg.ServerPort)
	}
	if cfg.DefaultMission != "TBA" {
		t.Fatalf("expected default mission TBA, got %q", cfg.DefaultMission)
	}
	if cfg.CompletionSweepInterval != time.Minute {
		t.Fatalf("expected 1m sweep interval, got %v", cfg.CompletionSweepInterval)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("expected 24h token ttl, got %v", cfg.TokenTTL)
	}
	if cfg.R2Enabled() {
		t.Fatal("expected R2 to be disabled")
	}
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadRejectsBadPort(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "70000")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Fatalf("expected SERVER_PORT error, got %v", err)
	}
}

func TestLoadRejectsPartialR2(t *testing.T) {
	setRequired(t)
	t.Setenv("R2_ACCOUNT_ID", "account")
	t.Setenv("R2_BUCKET_NAME", "bucket")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "R2") {
		t.Fatalf("expected partial R2 error, got %v", err)
	}
}

func TestLoadSQLiteAndOrigins(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseDriver != "sqlite" {
		t.Fatalf("expected sqlite, got %q", cfg.DatabaseDriver)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
}
